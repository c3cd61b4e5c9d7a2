package drive

import (
	"context"
	"fmt"
	"log/slog"
)

// listFields limits the response to what FileMetadata carries.
const listFields = "nextPageToken, files(id, name)"

// FileMetadata is a listed Drive file.
type FileMetadata struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListFiles returns at most pageSize entries from the first page of the
// user's files. Entries missing an id or a name are dropped. An empty result
// is not an error.
func (c *Client) ListFiles(ctx context.Context, pageSize int) ([]FileMetadata, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("drive: page size must be positive, got %d", pageSize)
	}

	c.logger.Debug("listing files", slog.Int("page_size", pageSize))

	list, err := c.svc.Files.List().
		PageSize(int64(pageSize)).
		Fields(listFields).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classifyError("listing files", err)
	}

	files := make([]FileMetadata, 0, len(list.Files))

	for _, f := range list.Files {
		if len(files) == pageSize {
			break
		}

		if f.Id == "" || f.Name == "" {
			c.logger.Debug("skipping file without id or name", slog.String("id", f.Id))
			continue
		}

		files = append(files, FileMetadata{ID: f.Id, Name: f.Name})
	}

	c.logger.Debug("listed files",
		slog.Int("count", len(files)),
		slog.Bool("more", list.NextPageToken != ""),
	)

	return files, nil
}

// File returns the metadata of a single file.
func (c *Client) File(ctx context.Context, fileID string) (*FileMetadata, error) {
	f, err := c.svc.Files.Get(fileID).Fields("id, name").Context(ctx).Do()
	if err != nil {
		return nil, classifyError("getting file "+fileID, err)
	}

	return &FileMetadata{ID: f.Id, Name: f.Name}, nil
}

// User is the signed-in Drive user.
type User struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// About returns the user the credentials belong to.
func (c *Client) About(ctx context.Context) (*User, error) {
	about, err := c.svc.About.Get().Fields("user(displayName, emailAddress)").Context(ctx).Do()
	if err != nil {
		return nil, classifyError("fetching user", err)
	}

	if about.User == nil {
		return &User{}, nil
	}

	return &User{DisplayName: about.User.DisplayName, Email: about.User.EmailAddress}, nil
}
