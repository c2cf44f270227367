package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/codebuildervaibhav/podcast-content/internal/client"
	"github.com/codebuildervaibhav/podcast-content/internal/controller"
	"github.com/codebuildervaibhav/podcast-content/internal/export"
	"github.com/codebuildervaibhav/podcast-content/internal/render"
	"github.com/codebuildervaibhav/podcast-content/internal/types"
	"github.com/codebuildervaibhav/podcast-content/internal/view"
)

// Config represents the CLI configuration
type Config struct {
	Service struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"service"`

	Poll struct {
		IntervalSeconds int `yaml:"interval_seconds"`
		Budget          int `yaml:"budget"`
		MaxWaitMinutes  int `yaml:"max_wait_minutes"`
	} `yaml:"poll"`

	Download struct {
		Dir string `yaml:"dir"`
	} `yaml:"download"`

	GoogleDrive struct {
		CredentialsFile string `yaml:"credentials_file"`
		TokenFile       string `yaml:"token_file"`
		FolderName      string `yaml:"folder_name"`
	} `yaml:"google_drive"`
}

func defaultConfig() Config {
	var cfg Config
	cfg.Service.BaseURL = "http://localhost:8000"
	cfg.Poll.IntervalSeconds = 5
	cfg.Poll.Budget = 60
	cfg.Download.Dir = "downloads"
	cfg.GoogleDrive.CredentialsFile = "credentials.json"
	cfg.GoogleDrive.TokenFile = "token.json"
	cfg.GoogleDrive.FolderName = "PodcastContent"
	return cfg
}

// loadConfig reads the YAML config, falling back to defaults when the
// file does not exist.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, ".podcast-content.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "submit":
		err = runSubmit(os.Args[2:])
	case "status":
		err = runStatus(os.Args[2:])
	case "download":
		err = runDownload(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: podcast-content <command> [flags]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  submit    Upload an audio file and wait for generated content")
	fmt.Fprintln(os.Stderr, "  status    Check a job by ID")
	fmt.Fprintln(os.Stderr, "  download  Fetch one generated artifact")
}

func runSubmit(args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	var (
		filePath   = fs.String("file", "", "audio file to upload (.mp3, .wav, .m4a, .ogg)")
		typesCSV   = fs.String("types", "blog,seo,faq,social,newsletter,quotes", "comma-separated content types")
		model      = fs.String("model", "", "override the generation model")
		configPath = fs.String("config", "", "config file path")
		fetch      = fs.Bool("fetch", false, "download all artifacts after completion")
		outDir     = fs.String("out", "", "download directory (overrides config)")
		gdrive     = fs.Bool("gdrive", false, "export downloaded artifacts to Google Drive (implies -fetch)")
		verbose    = fs.Bool("verbose", false, "enable debug logging")
	)
	fs.Parse(args)
	setupLogging(*verbose)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	if *outDir != "" {
		cfg.Download.Dir = *outDir
	}

	selected, err := parseTypesCSV(*typesCSV)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	req := types.UploadRequest{
		Path:         *filePath,
		Name:         filepath.Base(*filePath),
		ContentTypes: selected,
		Model:        *model,
	}
	if *filePath != "" {
		if info, statErr := os.Stat(*filePath); statErr == nil {
			req.Size = info.Size()
		}
	} else {
		req.Name = ""
	}

	svc := client.New(client.Config{BaseURL: cfg.Service.BaseURL})
	poller := client.NewPoller(svc)
	poller.Interval = time.Duration(cfg.Poll.IntervalSeconds) * time.Second
	poller.Budget = cfg.Poll.Budget
	poller.MaxWait = time.Duration(cfg.Poll.MaxWaitMinutes) * time.Minute

	console := view.NewConsole(os.Stdout, svc.DownloadURL)
	ctrl := controller.New(svc, poller, console)

	ctx := context.Background()

	// An interrupt mid-run cancels the poll loop before exiting, so no
	// stale ticks keep firing against a discarded job.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		ctrl.Reset()
		os.Exit(130)
	}()

	if err := ctrl.Submit(ctx, req); err != nil {
		return err
	}
	ctrl.Wait()

	if ctrl.State() != controller.StateResults {
		return errors.New("job did not complete")
	}

	if *fetch || *gdrive {
		paths, err := fetchArtifacts(ctx, svc, ctrl.Job().Files, cfg.Download.Dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		if *gdrive {
			if err := exportToDrive(ctx, cfg, paths); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return err
			}
		}
	}
	return nil
}

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	var (
		jobID      = fs.String("job", "", "job ID to check")
		configPath = fs.String("config", "", "config file path")
	)
	fs.Parse(args)
	setupLogging(false)

	if *jobID == "" {
		fmt.Fprintln(os.Stderr, "Error: -job is required")
		return errors.New("missing job ID")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	svc := client.New(client.Config{BaseURL: cfg.Service.BaseURL})
	job, err := svc.Status(context.Background(), *jobID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	switch job.Status {
	case types.StatusCompleted:
		fmt.Println("completed")
		for _, item := range render.Items(job.Files) {
			fmt.Printf("  %-20s %s\n", item.Label, svc.DownloadURL(item.Filename))
		}
	case types.StatusFailed:
		msg := job.Error
		if msg == "" {
			msg = "Processing failed. Please try again."
		}
		fmt.Printf("failed: %s\n", msg)
	default:
		fmt.Printf("processing: %s\n", job.Filename)
	}
	return nil
}

func runDownload(args []string) error {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	var (
		filename   = fs.String("file", "", "artifact filename to fetch")
		outDir     = fs.String("out", "", "destination directory (overrides config)")
		configPath = fs.String("config", "", "config file path")
	)
	fs.Parse(args)
	setupLogging(false)

	if *filename == "" {
		fmt.Fprintln(os.Stderr, "Error: -file is required")
		return errors.New("missing filename")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	if *outDir != "" {
		cfg.Download.Dir = *outDir
	}

	svc := client.New(client.Config{BaseURL: cfg.Service.BaseURL})
	path, err := svc.Download(context.Background(), *filename, cfg.Download.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	fmt.Printf("Saved %s\n", path)
	return nil
}

// fetchArtifacts downloads every artifact of a completed job in display
// order and returns the written paths.
func fetchArtifacts(ctx context.Context, svc *client.Client, files map[string]string, destDir string) ([]string, error) {
	items := render.Items(files)
	paths := make([]string, 0, len(items))
	for _, item := range items {
		path, err := svc.Download(ctx, item.Filename, destDir)
		if err != nil {
			return paths, fmt.Errorf("download %s: %w", item.Filename, err)
		}
		slog.Debug("artifact downloaded", "label", item.Label, "path", path)
		fmt.Printf("Saved %s\n", path)
		paths = append(paths, path)
	}
	return paths, nil
}

// exportToDrive uploads the downloaded artifacts to Google Drive. Missing
// credentials only skip the export with a warning; the job itself succeeded.
func exportToDrive(ctx context.Context, cfg Config, paths []string) error {
	if _, err := os.Stat(cfg.GoogleDrive.CredentialsFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Google Drive not available (%s not found), skipping export\n",
			cfg.GoogleDrive.CredentialsFile)
		return nil
	}

	exporter, err := export.NewDriveExporter(ctx,
		cfg.GoogleDrive.CredentialsFile,
		cfg.GoogleDrive.TokenFile,
		cfg.GoogleDrive.FolderName,
	)
	if err != nil {
		return fmt.Errorf("google drive: %w", err)
	}

	links, err := exporter.Export(paths)
	if err != nil {
		return fmt.Errorf("google drive: %w", err)
	}
	for _, link := range links {
		fmt.Printf("Exported %s\n", link)
	}
	return nil
}

func parseTypesCSV(csv string) ([]types.ContentType, error) {
	if strings.TrimSpace(csv) == "" {
		return nil, nil
	}
	parts := strings.Split(csv, ",")
	selected := make([]types.ContentType, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		ct, ok := types.ParseContentType(p)
		if !ok {
			return nil, fmt.Errorf("unknown content type %q (valid: %v)", p, types.AllContentTypes)
		}
		selected = append(selected, ct)
	}
	return selected, nil
}

func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
