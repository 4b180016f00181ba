package prompts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/crucial707/journal-prompt-api/cmd/cli/config"
	"github.com/crucial707/journal-prompt-api/cmd/cli/output"
	"github.com/crucial707/journal-prompt-api/internal/models"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

// ==========================
// Init Prompts
// ==========================
func InitPrompts(rootCmd *cobra.Command) {
	rootCmd.AddCommand(
		randomPromptCmd(),
		addPromptCmd(),
	)
}

// ==========================
// RANDOM
// ==========================
func randomPromptCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Print a random prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := httpClient.Get(config.APIURL() + "/random")
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return apiError(resp)
			}

			var prompt *models.Prompt
			if err := json.NewDecoder(resp.Body).Decode(&prompt); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, prompt)
			}
			if prompt == nil {
				fmt.Fprintln(out, "No prompts available")
				return nil
			}
			output.RenderTable(out, []string{"ID", "Text"}, [][]interface{}{{prompt.ID, prompt.Text}})
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON response")
	return cmd
}

// ==========================
// ADD
// ==========================
func addPromptCmd() *cobra.Command {
	var text, username, password string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a prompt (requires credentials)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := json.Marshal(map[string]string{"text": text})
			if err != nil {
				return err
			}

			req, err := http.NewRequest(http.MethodPost, config.APIURL()+"/prompts", bytes.NewReader(body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			req.SetBasicAuth(username, password)

			resp, err := httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return apiError(resp)
			}

			var prompt models.Prompt
			if err := json.NewDecoder(resp.Body).Decode(&prompt); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, prompt)
			}
			output.RenderTable(out, []string{"ID", "Text"}, [][]interface{}{{prompt.ID, prompt.Text}})
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "prompt text")
	cmd.Flags().StringVar(&username, "username", config.Username(), "API username (default $JOURNAL_USERNAME)")
	cmd.Flags().StringVar(&password, "password", config.Password(), "API password (default $JOURNAL_PASSWORD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON response")
	_ = cmd.MarkFlagRequired("text")

	return cmd
}

// apiError turns a non-200 response into an error carrying the server's message.
func apiError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return fmt.Errorf("%s: %s", resp.Status, body.Error)
	}
	return fmt.Errorf("%s", resp.Status)
}

func printJSON(out io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(b))
	return nil
}
