package cli

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/refrag/internal/adapters/driving/render"
	"github.com/custodia-labs/refrag/internal/core/domain"
)

var (
	askK          int
	askStrategy   string
	askJSON       bool
	askMarkdown   bool
	askSaveImages string
)

// errAnswerFailed is returned after a failed answer has been printed.
var errAnswerFailed = errors.New("answer failed")

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed documents",
	Long: `Retrieves the passages most relevant to the question, resolves the
tables and pictures they reference, and asks the language model for an
answer grounded in those passages.

Examples:
  refrag ask "What is the maximum daily dose?"
  refrag ask -k 5 --strategy similarity "Which side effects are listed?"
  refrag ask --json --save-images ./figures "Show the dosing schedule"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askK, "top-k", "k", 0, "number of passages to retrieve (default from settings)")
	askCmd.Flags().StringVar(&askStrategy, "strategy", "", "retrieval strategy: mmr or similarity")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer record as JSON")
	askCmd.Flags().BoolVar(&askMarkdown, "markdown", false, "output plain markdown")
	askCmd.Flags().StringVar(&askSaveImages, "save-images", "", "directory to write referenced images to")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	if askStrategy != "" && !domain.SearchStrategy(askStrategy).IsValid() {
		return fmt.Errorf("%w: unknown strategy %q (want one of %v)", domain.ErrInvalidInput, askStrategy, domain.AllSearchStrategies())
	}

	r, err := loadRuntime(cmd.Context(), func(s *domain.AppSettings) {
		if askK > 0 {
			s.Retrieval.K = askK
			s.Retrieval = s.Retrieval.Normalised()
		}
		if askStrategy != "" {
			s.Retrieval.Strategy = domain.SearchStrategy(askStrategy)
		}
	})
	if err != nil {
		return err
	}
	if r.Answer == nil {
		return errors.New("answer service not configured")
	}

	result := r.Answer.Answer(cmd.Context(), question)

	if askSaveImages != "" && result.OK() {
		paths, err := saveImages(askSaveImages, result.Record.Images)
		if err != nil {
			return err
		}
		for _, p := range paths {
			cmd.PrintErrf("Saved %s\n", p)
		}
	}

	switch {
	case askJSON:
		data, err := json.MarshalIndent(result.Record, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
	case askMarkdown:
		cmd.Print(render.Markdown(result.Record))
	default:
		cmd.Print(render.NewStyles(nil).Terminal(result))
	}

	if !result.OK() {
		return errAnswerFailed
	}
	return nil
}

// saveImages decodes each image into dir and returns the written paths.
func saveImages(dir string, images map[string]string) ([]string, error) {
	if len(images) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	var paths []string
	for _, ref := range render.SortedRefs(images) {
		data, err := base64.StdEncoding.DecodeString(images[ref])
		if err != nil {
			return paths, fmt.Errorf("failed to decode image %s: %w", ref, err)
		}
		path := filepath.Join(dir, imageFileName(ref, data))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// imageFileName turns "#/pictures/3" into "pictures_3.png", picking the
// extension from the sniffed content type.
func imageFileName(ref string, data []byte) string {
	name := strings.Trim(strings.ReplaceAll(strings.TrimPrefix(ref, "#"), "/", "_"), "_")
	if name == "" {
		name = "image"
	}

	ext := ".bin"
	switch http.DetectContentType(data) {
	case "image/png":
		ext = ".png"
	case "image/jpeg":
		ext = ".jpg"
	case "image/gif":
		ext = ".gif"
	case "image/webp":
		ext = ".webp"
	case "image/bmp":
		ext = ".bmp"
	}
	return name + ext
}
