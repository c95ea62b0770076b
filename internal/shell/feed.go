package shell

import (
	"fmt"
	"image"
	_ "image/jpeg" // decoders for post images
	_ "image/png"
	"os"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/takebook/internal/store"
)

// maxPostImage bounds attached images in the feed.
var maxPostImage = fyne.NewSize(600, 400)

// postCaption is the grey line under a post's author.
func postCaption(p store.Post, now time.Time) string {
	return humanize.RelTime(p.CreatedAt, now, "ago", "from now")
}

// prompt is the post box placeholder.
func prompt(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return fmt.Sprintf("What's on your mind, %s?", name)
}

// loadImage decodes a post attachment.
func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open post image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode post image %s: %w", path, err)
	}
	return img, nil
}

func (s *Shell) feedView() fyne.CanvasObject {
	text := widget.NewMultiLineEntry()
	text.SetPlaceHolder(prompt(s.user))
	text.SetMinRowsVisible(3)

	postBtn := widget.NewButton("Post", func() {
		content := strings.TrimSpace(text.Text)
		if content == "" {
			dialog.ShowInformation("Empty", "Please write something.", s.win)
			return
		}
		dialog.ShowConfirm("Add Image", "Do you want to attach an image?", func(attach bool) {
			if !attach {
				s.submitPost(content, "")
				return
			}
			picker := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
				path := ""
				if err != nil {
					log.WithError(err).Warn("choose post image")
				}
				if rc != nil {
					path = rc.URI().Path()
					rc.Close()
				}
				s.submitPost(content, path)
			}, s.win)
			picker.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg"}))
			picker.Show()
		}, s.win)
	})
	postBtn.Importance = widget.HighImportance

	box := widget.NewCard("", "", container.NewVBox(text, postBtn))
	items := container.NewVBox(widget.NewLabelWithStyle("Home Feed", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}), box)

	posts, err := s.store.ListPosts()
	if err != nil {
		log.WithError(err).Error("list posts")
		items.Add(widget.NewLabel("Could not load posts."))
	} else if len(posts) == 0 {
		items.Add(widget.NewLabel("No posts yet."))
	}

	now := time.Now()
	for _, p := range posts {
		items.Add(postCard(p, now))
	}
	return container.NewVScroll(items)
}

func postCard(p store.Post, now time.Time) fyne.CanvasObject {
	body := widget.NewLabel(p.Content)
	body.Wrapping = fyne.TextWrapWord
	content := container.NewVBox(body)

	if p.ImagePath != "" {
		img, err := loadImage(p.ImagePath)
		if err != nil {
			log.WithError(err).WithField("post", p.ID).Warn("skipping post image")
		} else {
			c := canvas.NewImageFromImage(img)
			c.FillMode = canvas.ImageFillContain
			c.SetMinSize(fitWithin(img.Bounds().Size(), maxPostImage))
			content.Add(c)
		}
	}
	return widget.NewCard(p.Author, postCaption(p, now), content)
}

// fitWithin scales size down to fit bound, keeping the aspect ratio.
func fitWithin(size image.Point, bound fyne.Size) fyne.Size {
	w, h := float32(size.X), float32(size.Y)
	if w <= 0 || h <= 0 {
		return fyne.NewSize(0, 0)
	}
	scale := float32(1)
	if w > bound.Width {
		scale = bound.Width / w
	}
	if h*scale > bound.Height {
		scale = bound.Height / h
	}
	return fyne.NewSize(w*scale, h*scale)
}

func (s *Shell) submitPost(content, imagePath string) {
	if _, err := s.store.AddPost(s.user, content, imagePath); err != nil {
		log.WithError(err).Error("add post")
		dialog.ShowError(err, s.win)
		return
	}
	s.refreshFeed()
}
