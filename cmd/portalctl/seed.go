package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/campusvoice/portal/backend/internal/adapters/database"
	"github.com/campusvoice/portal/backend/internal/application/services"
	"github.com/campusvoice/portal/backend/internal/domain/entities"
)

type SeedFlags struct {
	Reset bool
}

func NewSeedFlags() *SeedFlags {
	return &SeedFlags{}
}

func (f *SeedFlags) BindFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&f.Reset, "reset", f.Reset, "Truncate portal tables before seeding")
}

type demoStudent struct {
	id, name, externalID string
}

var demoStudents = []demoStudent{
	{id: "student-1", name: "Asha Raman", externalID: "21BCE1001"},
	{id: "student-2", name: "Ravi Kumar", externalID: "21BCE1002"},
	{id: "student-3", name: "Meera Das", externalID: "21BCE1003"},
}

func init() {
	f := NewSeedFlags()

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo complaints, feedback posts and ratings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			pgClient, err := connectPostgres()
			if err != nil {
				return err
			}
			defer pgClient.Close()

			if f.Reset {
				log.Warn().Msg("--reset given, truncating tables before seeding")
				if _, err := pgClient.DB().ExecContext(ctx,
					`TRUNCATE TABLE stored_alerts, complaints, feedback_posts`); err != nil {
					return fmt.Errorf("failed to truncate tables: %w", err)
				}
			}

			complaintRepo := database.NewComplaintAdapter(pgClient)
			postRepo := database.NewFeedbackPostAdapter(pgClient)

			return seed(ctx,
				services.NewComplaintService(complaintRepo, nil, nil),
				services.NewComplaintStatusService(complaintRepo, nil, nil),
				services.NewFeedbackPostService(postRepo),
				services.NewRatingService(postRepo, cfg.Rating.MaxAttempts),
			)
		},
	}

	f.BindFlags(cmd.Flags())
	rootCmd.AddCommand(cmd)
}

func seed(
	ctx context.Context,
	complaints *services.ComplaintService,
	triage *services.ComplaintStatusService,
	posts *services.FeedbackPostService,
	ratings *services.RatingService,
) error {
	complaintInputs := []services.CreateComplaintInput{
		{Title: "Wifi drops every evening", Category: "Hostel", Description: "Block C loses connectivity between 7 and 10 pm."},
		{Title: "Projector not working", Category: "Infrastructure", Description: "Room 204 projector shows no signal."},
		{Title: "Library closes early", Category: "Library", Description: "Reading hall shuts at 8 pm during exams."},
	}

	var created []*entities.Complaint
	for i, input := range complaintInputs {
		author := demoStudents[i%len(demoStudents)]
		input.AuthorID = author.id
		input.AuthorName = author.name
		input.AuthorExternalID = author.externalID

		complaint, err := complaints.Create(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to seed complaint %q: %w", input.Title, err)
		}
		created = append(created, complaint)
	}

	if err := triage.ChangeStatus(ctx, created[0].ID, string(entities.ComplaintStatusInProgress)); err != nil {
		return err
	}
	if err := triage.AddResponse(ctx, created[0].ID, "Network team has been informed."); err != nil {
		return err
	}
	if err := triage.ChangeStatus(ctx, created[1].ID, string(entities.ComplaintStatusResolved)); err != nil {
		return err
	}

	everyone, err := posts.Create(ctx, services.CreateFeedbackPostInput{
		Category:   "Hostel Food Quality",
		Content:    "Rate this week's mess menu.",
		Audience:   entities.AudienceAll,
		AuthorID:   "admin-1",
		AuthorName: "Dean of Students",
	})
	if err != nil {
		return fmt.Errorf("failed to seed feedback post: %w", err)
	}

	if _, err := posts.Create(ctx, services.CreateFeedbackPostInput{
		Title:        "Lab hygiene check",
		Category:     "Campus Hygiene",
		Audience:     entities.AudienceSpecific,
		RecipientIDs: []string{demoStudents[0].id, demoStudents[1].id},
		AuthorID:     "admin-1",
		AuthorName:   "Dean of Students",
	}); err != nil {
		return fmt.Errorf("failed to seed targeted post: %w", err)
	}

	for i, student := range demoStudents {
		if _, err := ratings.Submit(ctx, services.SubmitRatingInput{
			PostID:     everyone.ID,
			AuthorID:   student.id,
			AuthorName: student.name,
			Score:      3 + i%3,
		}); err != nil {
			return fmt.Errorf("failed to seed rating for %s: %w", student.id, err)
		}
	}

	log.Info().
		Int("complaints", len(created)).
		Int("posts", 2).
		Int("ratings", len(demoStudents)).
		Msg("Seed data inserted")
	return nil
}
