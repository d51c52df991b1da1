package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	serverURL   string
	noAutoStart bool
	rootCmd     = &cobra.Command{
		Use:   "mediagrab",
		Short: "MediaGrab CLI - Download videos and audio from web pages",
		Long:  `A command-line interface for inspecting formats and downloading media through a MediaGrab server.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.PersistentFlags().BoolVar(&noAutoStart, "no-auto-start", false, "Don't auto-start server if not running")

	rootCmd.AddCommand(formatsCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(mp3Cmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(progressCmd)
}

// ensureServer checks if server is running and starts it if needed (unless --no-auto-start)
func ensureServer() {
	if noAutoStart {
		return
	}
	if err := ensureServerRunning(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

var formatsCmd = &cobra.Command{
	Use:   "formats [url]",
	Short: "List available formats for a video URL",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()

		body := postJSON("/api/v1/formats", map[string]string{"url": args[0]}, http.StatusOK)

		var listing struct {
			Title         string `json:"title"`
			Duration      float64
			ForceDownload bool `json:"force_download"`
			Video         struct {
				Combined []formatRow `json:"combined"`
				Video    []formatRow `json:"video"`
				Audio    []formatRow `json:"audio"`
			} `json:"video"`
		}
		json.Unmarshal(body, &listing)

		fmt.Printf("Title: %s\n", listing.Title)
		if listing.ForceDownload {
			fmt.Println("No structured formats found; download will use force mode")
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FORMAT\tRESOLUTION\tSIZE\tKIND")
		printFormatRows(w, listing.Video.Combined, "combined")
		printFormatRows(w, listing.Video.Video, "video")
		printFormatRows(w, listing.Video.Audio, "audio")
		w.Flush()
	},
}

type formatRow struct {
	FormatID   string `json:"format_id"`
	Resolution string `json:"resolution"`
	Size       string `json:"size"`
}

func printFormatRows(w io.Writer, rows []formatRow, kind string) {
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.FormatID, r.Resolution, r.Size, kind)
	}
}

var downloadCmd = &cobra.Command{
	Use:   "download [url]",
	Short: "Start a video download",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()

		formatID, _ := cmd.Flags().GetString("format")
		force, _ := cmd.Flags().GetBool("force")
		follow, _ := cmd.Flags().GetBool("follow")

		payload := map[string]interface{}{"url": args[0]}
		if formatID != "" {
			payload["format_id"] = formatID
		}
		if force {
			payload["force_download"] = true
		}

		body := postJSON("/api/v1/downloads", payload, http.StatusAccepted)

		var result map[string]string
		json.Unmarshal(body, &result)
		id := result["id"]
		fmt.Printf("Download started\nID: %s\n", id)

		if follow {
			followProgress(id)
		}
	},
}

var mp3Cmd = &cobra.Command{
	Use:   "mp3 [url]",
	Short: "Download a video's audio track as mp3",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()

		follow, _ := cmd.Flags().GetBool("follow")

		body := postJSON("/api/v1/downloads/mp3", map[string]string{"url": args[0]}, http.StatusAccepted)

		var result map[string]string
		json.Unmarshal(body, &result)
		id := result["id"]
		fmt.Printf("MP3 extraction started\nID: %s\n", id)

		if follow {
			followProgress(id)
		}
	},
}

var statusCmd = &cobra.Command{
	Use:   "status [id]",
	Short: "Get download job status",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()

		resp, err := http.Get(serverURL + "/api/v1/downloads/" + args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}

		var job struct {
			ID      string `json:"id"`
			URL     string `json:"url"`
			Kind    string `json:"kind"`
			Done    bool   `json:"done"`
			Warning string `json:"warning"`
			Error   string `json:"error"`
			Outcome *struct {
				Succeeded  bool   `json:"succeeded"`
				Engine     string `json:"engine"`
				OutputPath string `json:"output_path"`
				Message    string `json:"message"`
			} `json:"outcome"`
		}
		json.Unmarshal(body, &job)

		fmt.Printf("Job Details:\n")
		fmt.Printf("  ID:   %s\n", job.ID)
		fmt.Printf("  URL:  %s\n", job.URL)
		fmt.Printf("  Kind: %s\n", job.Kind)
		fmt.Printf("  Done: %v\n", job.Done)
		if job.Warning != "" {
			fmt.Printf("  Warning: %s\n", job.Warning)
		}
		if job.Error != "" {
			fmt.Printf("  Error: %s\n", job.Error)
		}
		if job.Outcome != nil {
			fmt.Printf("  Engine: %s\n", job.Outcome.Engine)
			fmt.Printf("  Result: %s\n", job.Outcome.Message)
			if job.Outcome.OutputPath != "" {
				fmt.Printf("  File:   %s\n", job.Outcome.OutputPath)
			}
		}
	},
}

var progressCmd = &cobra.Command{
	Use:   "progress [id]",
	Short: "Follow live progress of a download",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		followProgress(args[0])
	},
}

// followProgress consumes the server-sent event stream and prints each event.
func followProgress(id string) {
	resp, err := http.Get(serverURL + "/api/v1/downloads/" + id + "/progress")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
		os.Exit(1)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		var event struct {
			Status  string  `json:"status"`
			Percent float64 `json:"percent"`
			Message string  `json:"message"`
		}
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data:")), &event); err != nil {
			continue
		}

		switch {
		case event.Percent >= 0:
			fmt.Printf("\r%s: %.1f%%   ", event.Status, event.Percent)
		default:
			fmt.Printf("\r%s          ", event.Status)
		}

		if event.Status == "complete" || event.Status == "failed" {
			fmt.Printf("\n%s\n", event.Message)
			return
		}
	}
}

// postJSON posts a payload and returns the body, exiting on transport errors
// or an unexpected status.
func postJSON(path string, payload interface{}, wantStatus int) []byte {
	data, _ := json.Marshal(payload)
	resp, err := http.Post(serverURL+path, "application/json", bytes.NewBuffer(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
		os.Exit(1)
	}
	return body
}

func init() {
	downloadCmd.Flags().StringP("format", "f", "", "Format id to download")
	downloadCmd.Flags().Bool("force", false, "Escalate through fallback engines on failure")
	downloadCmd.Flags().Bool("follow", false, "Follow progress until completion")
	mp3Cmd.Flags().Bool("follow", false, "Follow progress until completion")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
