package export

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveExporter copies downloaded artifacts into a Google Drive folder.
type DriveExporter struct {
	service    *drive.Service
	folderName string
	folderID   string
}

// NewDriveExporter authorizes against Google Drive and ensures the target
// folder exists. The token file is created on first use after an
// interactive authorization code prompt.
func NewDriveExporter(ctx context.Context, credentialsFile, tokenFile, folderName string) (*DriveExporter, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	httpClient, err := authorizedClient(ctx, config, tokenFile)
	if err != nil {
		return nil, err
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	e := &DriveExporter{service: srv, folderName: folderName}
	if err := e.ensureFolder(); err != nil {
		return nil, err
	}
	return e, nil
}

// Export uploads each local file into a dated subfolder and returns one
// shareable link per file, in input order.
func (e *DriveExporter) Export(paths []string) ([]string, error) {
	folderID, err := e.ensureDateFolder(time.Now())
	if err != nil {
		return nil, err
	}

	links := make([]string, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return links, fmt.Errorf("open artifact %s: %w", path, err)
		}

		meta := &drive.File{
			Name:    filepath.Base(path),
			Parents: []string{folderID},
		}
		created, err := e.service.Files.Create(meta).Media(f).Fields("id").Do()
		f.Close()
		if err != nil {
			return links, fmt.Errorf("upload %s: %w", filepath.Base(path), err)
		}

		links = append(links, fmt.Sprintf("https://drive.google.com/file/d/%s/view", created.Id))
	}
	return links, nil
}

// authorizedClient loads a cached token or walks the user through the
// authorization code flow once, caching the result.
func authorizedClient(ctx context.Context, config *oauth2.Config, tokenFile string) (*http.Client, error) {
	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		tok, err = tokenFromPrompt(ctx, config)
		if err != nil {
			return nil, err
		}
		if err := saveToken(tokenFile, tok); err != nil {
			return nil, err
		}
	}
	return config.Client(ctx, tok), nil
}

func tokenFromPrompt(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser:\n%v\n", authURL)
	fmt.Print("Enter authorization code: ")

	var authCode string
	if _, err := fmt.Scan(&authCode); err != nil {
		return nil, fmt.Errorf("read authorization code: %w", err)
	}

	tok, err := config.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return tok, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("cache oauth token: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// ensureFolder finds or creates the export root folder.
func (e *DriveExporter) ensureFolder() error {
	query := fmt.Sprintf("name='%s' and mimeType='application/vnd.google-apps.folder' and trashed=false",
		e.folderName)

	r, err := e.service.Files.List().Q(query).Spaces("drive").Fields("files(id, name)").Do()
	if err != nil {
		return fmt.Errorf("search for folder: %w", err)
	}
	if len(r.Files) > 0 {
		e.folderID = r.Files[0].Id
		return nil
	}

	folder := &drive.File{
		Name:     e.folderName,
		MimeType: "application/vnd.google-apps.folder",
	}
	file, err := e.service.Files.Create(folder).Fields("id").Do()
	if err != nil {
		return fmt.Errorf("create folder: %w", err)
	}
	e.folderID = file.Id
	return nil
}

// ensureDateFolder creates nested year/month/day folders under the root.
func (e *DriveExporter) ensureDateFolder(t time.Time) (string, error) {
	id := e.folderID
	for _, name := range []string{
		fmt.Sprintf("%d", t.Year()),
		fmt.Sprintf("%02d", t.Month()),
		fmt.Sprintf("%02d", t.Day()),
	} {
		next, err := e.findOrCreateFolder(name, id)
		if err != nil {
			return "", err
		}
		id = next
	}
	return id, nil
}

func (e *DriveExporter) findOrCreateFolder(name, parentID string) (string, error) {
	query := fmt.Sprintf("name='%s' and '%s' in parents and mimeType='application/vnd.google-apps.folder' and trashed=false",
		name, parentID)

	r, err := e.service.Files.List().Q(query).Spaces("drive").Fields("files(id)").Do()
	if err != nil {
		return "", err
	}
	if len(r.Files) > 0 {
		return r.Files[0].Id, nil
	}

	folder := &drive.File{
		Name:     name,
		MimeType: "application/vnd.google-apps.folder",
		Parents:  []string{parentID},
	}
	file, err := e.service.Files.Create(folder).Fields("id").Do()
	if err != nil {
		return "", err
	}
	return file.Id, nil
}
