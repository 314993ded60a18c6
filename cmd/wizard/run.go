package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/fairyhunter13/ai-future-predictor/internal/adapter/observability"
	"github.com/fairyhunter13/ai-future-predictor/internal/adapter/predictapi"
	"github.com/fairyhunter13/ai-future-predictor/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ai-future-predictor/internal/config"
	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
	"github.com/fairyhunter13/ai-future-predictor/internal/profile"
	"github.com/fairyhunter13/ai-future-predictor/internal/usecase"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Complete the wizard and request a prediction",
	Long: `Run drives the wizard with the answers file, saves the profile and photo on the
server and requests a prediction. When the server cannot produce one, a local
prediction is built and written to DB_URL.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("answers", "", "Path to answers YAML file")
	runCmd.Flags().String("server", "http://localhost:8080", "Prediction server base URL")
	runCmd.Flags().String("user-id", "", "User ID (overrides user_id in the answers file)")
	runCmd.Flags().Duration("timeout", 3*time.Minute, "Per-request timeout")
	if err := runCmd.MarkFlagRequired("answers"); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(runCmd)
}

// profileClient is the server-side profile surface the session needs.
type profileClient interface {
	SaveProfile(ctx domain.Context, p domain.StudentProfile) (domain.StudentProfile, error)
	UploadPhoto(ctx domain.Context, userID string, data []byte) (string, error)
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	path, _ := cmd.Flags().GetString("answers")
	server, _ := cmd.Flags().GetString("server")
	userID, _ := cmd.Flags().GetString("user-id")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	a, data, ct, err := loadAnswers(path, cfg.MaxPhotoBytes())
	if err != nil {
		return err
	}
	if strings.TrimSpace(userID) != "" {
		a.UserID = userID
	}
	if strings.TrimSpace(a.UserID) == "" {
		a.UserID = "user_" + strings.ToLower(ulid.Make().String())
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = observability.ContextWithLogger(ctx, logger)

	// The pool connects lazily, so an unreachable database only matters for the local tier.
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		return fmt.Errorf("db pool: %w", err)
	}
	defer pool.Close()

	client := predictapi.New(server, timeout)
	requester := usecase.NewRequester(client, postgres.NewPredictionRepo(pool))
	return runSession(ctx, cmd.OutOrStdout(), a, data, ct, client, requester)
}

// runSession drives the wizard, stores the profile and photo, requests the
// prediction and prints the outcome as JSON. Profile and photo failures are
// logged and do not stop the prediction.
func runSession(ctx context.Context, out io.Writer, a Answers, data []byte, ct string, profiles profileClient, requester *usecase.Requester) error {
	lg := observability.LoggerFromContext(ctx).With(slog.String("user_id", a.UserID))

	s, err := drive(a, data, ct)
	if err != nil {
		return err
	}

	if _, err := profiles.SaveProfile(ctx, profile.ToStudentProfile(a.UserID, s.Data)); err != nil {
		lg.Warn("save profile failed", slog.Any("error", err))
	} else if len(s.Data.Photo) > 0 {
		if url, err := profiles.UploadPhoto(ctx, a.UserID, s.Data.Photo); err != nil {
			lg.Warn("photo upload failed", slog.Any("error", err))
		} else {
			lg.Info("photo uploaded", slog.String("photo_url", url))
		}
	}

	outcome, err := requester.Request(ctx, a.UserID, profile.Assemble(s.Data), s.Data.Photo, s.Data.PhotoContentType)
	if err != nil {
		return err
	}
	lg.Info("prediction ready", slog.String("tier", string(outcome.Tier)))

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(outcome)
}
