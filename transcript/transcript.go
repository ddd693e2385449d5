// Package transcript renders a ticket channel's full message history into a
// self-contained HTML document with downloaded attachment copies, and packs
// the result into a zip archive for delivery to the log channel.
package transcript

import (
	"archive/zip"
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

// History is the slice of the platform client the archiver needs. The method
// signature mirrors discordgo so *discordgo.Session satisfies it directly.
type History interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
}

const pageSize = 100

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

type Archiver struct {
	// Dir is the root under which each archival run creates its own
	// uniquely named folder. Folders are retained after delivery.
	Dir     string
	History History
	Client  *http.Client
}

// Archive fetches the channel's entire history, renders it oldest-first and
// writes the document plus downloaded attachments under a fresh folder.
// It returns the folder path. A failed attachment download fails the whole
// run; the partially written folder is left on disk for inspection.
func (a *Archiver) Archive(channelID, channelName string) (string, error) {
	msgs, err := a.fetchAll(channelID)
	if err != nil {
		return "", fmt.Errorf("fetch history: %w", err)
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})

	id := uuid.NewString()
	folder := filepath.Join(a.Dir, "transcript-"+id)
	attachmentsDir := filepath.Join(folder, "attachments")
	if err := os.MkdirAll(attachmentsDir, 0755); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("<html><head>")
	b.WriteString(`<link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css" rel="stylesheet">`)
	b.WriteString("<style>.embed-card { max-width: 400px; margin: 10px 0; }</style>")
	b.WriteString("</head><body>")
	fmt.Fprintf(&b, `<div class="container my-5"><h1>Transcript of %s</h1><ul class="list-unstyled">`, html.EscapeString(channelName))

	for _, m := range msgs {
		a.renderMessage(&b, m)

		for _, e := range m.Embeds {
			renderEmbed(&b, e)
		}

		for _, att := range m.Attachments {
			if err := a.renderAttachment(&b, att, attachmentsDir); err != nil {
				return "", fmt.Errorf("attachment %s: %w", att.ID, err)
			}
		}
	}

	b.WriteString("</ul></div></body></html>")

	docPath := filepath.Join(folder, "transcript-"+id+".html")
	if err := os.WriteFile(docPath, []byte(b.String()), 0644); err != nil {
		return "", err
	}
	return folder, nil
}

func (a *Archiver) fetchAll(channelID string) ([]*discordgo.Message, error) {
	var all []*discordgo.Message
	before := ""
	for {
		page, err := a.History.ChannelMessages(channelID, pageSize, before, "", "")
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
		// Pages arrive newest-first; the last entry is the oldest seen.
		before = page[len(page)-1].ID
	}
}

func (a *Archiver) renderMessage(b *strings.Builder, m *discordgo.Message) {
	author := "unknown"
	avatar := ""
	if m.Author != nil {
		author = m.Author.Username
		if m.Author.GlobalName != "" {
			author = m.Author.GlobalName
		}
		avatar = m.Author.AvatarURL("")
	}
	fmt.Fprintf(b,
		`<li class="my-2"><span class="me-2"><img class="rounded-circle" width="35px" src="%s"></span><strong>%s</strong>: %s</li>`,
		avatar, html.EscapeString(author), html.EscapeString(m.Content))
}

func renderEmbed(b *strings.Builder, e *discordgo.MessageEmbed) {
	fmt.Fprintf(b, `<li class="my-2"><div class="card embed-card" style="border-left: 5px solid #%06x;">`, e.Color)
	if e.Title != "" {
		fmt.Fprintf(b, `<div class="card-header"><strong>%s</strong></div>`, html.EscapeString(e.Title))
	}
	if e.Description != "" {
		fmt.Fprintf(b, `<div class="card-body">%s</div>`, html.EscapeString(e.Description))
	}
	if e.Footer != nil && e.Footer.Text != "" {
		fmt.Fprintf(b, `<div class="card-footer text-muted">%s</div>`, html.EscapeString(e.Footer.Text))
	}
	b.WriteString("</div></li>")
}

func (a *Archiver) renderAttachment(b *strings.Builder, att *discordgo.MessageAttachment, dir string) error {
	ext := strings.ToLower(filepath.Ext(att.Filename))
	name := uuid.NewString() + ext

	if err := a.download(att.URL, filepath.Join(dir, name)); err != nil {
		return err
	}

	ref := "attachments/" + name
	if imageExtensions[ext] {
		fmt.Fprintf(b,
			`<li class="my-2"><strong>Attachment:</strong> <img src="%s" alt="%s" style="max-width: 100%%;"></li>`,
			ref, html.EscapeString(att.Filename))
	} else {
		fmt.Fprintf(b,
			`<li class="my-2"><strong>Attachment:</strong> <a href="%s">%s</a></li>`,
			ref, name)
	}
	return nil
}

func (a *Archiver) download(url, path string) error {
	client := a.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: status %s", url, resp.Status)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Pack zips the folder's contents (paths relative to the folder root) into a
// sibling <folder>.zip and returns the archive path. The uncompressed tree is
// kept alongside it.
func Pack(folder string) (string, error) {
	zipPath := folder + ".zip"
	out, err := os.Create(zipPath)
	if err != nil {
		return "", err
	}
	w := zip.NewWriter(out)

	err = filepath.Walk(folder, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(folder, path)
		if err != nil {
			return err
		}
		dst, err := w.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(dst, src)
		return err
	})
	if err != nil {
		w.Close()
		out.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		out.Close()
		return "", err
	}
	return zipPath, out.Close()
}
