package jandiui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/blogjandi/jandi/internal/config"
	"github.com/blogjandi/jandi/internal/logging"
	"github.com/blogjandi/jandi/internal/models"
)

func newImportCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <posts.json|->",
		Short: "Load posts into the local archive",
		Long: "Load a JSON array of posts ({url, category, date, title, platform}) into the sqlite archive " +
			"for source.user_id. Existing posts with the same url and platform are replaced.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if root.cfg.Source.Kind != config.SourceSQLite {
				return fmt.Errorf("import needs the sqlite source (set source.kind or pass --source sqlite)")
			}
			posts, err := readPosts(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			archive, err := openArchive(cmd.Context(), root.cfg)
			if err != nil {
				return err
			}
			defer archive.Close()

			n, err := archive.Import(cmd.Context(), posts)
			if errors.Is(err, models.ErrInvalidDate) {
				return fmt.Errorf("%w (dates are YYYY-MM-DD)", err)
			}
			if err != nil {
				return err
			}
			log := logging.ComponentFrom(cmd.Context(), "import")
			log.Info().
				Int("posts", n).
				Str("db", root.cfg.Source.DBPath).
				Msg("import complete")
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d posts\n", n)
			return err
		},
	}
}

func readPosts(stdin io.Reader, path string) ([]models.Post, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open posts file: %w", err)
		}
		defer f.Close()
		r = f
	}
	var posts []models.Post
	if err := json.NewDecoder(r).Decode(&posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}
