package course

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"drivestudy/backend/drive"
	"drivestudy/backend/models"

	"golang.org/x/sync/errgroup"
)

const (
	// maxDepth caps recursion. Folders nested deeper contribute no
	// lessons; a listing that deep is treated as malformed input, not
	// something to chase.
	maxDepth = 3

	// bucketName labels the synthesized module that collects loose
	// files sitting directly in the course root.
	bucketName = "General"

	// placeholderName substitutes the course title when the root
	// folder's name cannot be resolved.
	placeholderName = "Course"
)

var extensionRe = regexp.MustCompile(`\.[^.]+$`)

// Builder synthesizes a course tree from a remote folder listing.
type Builder struct {
	listing drive.Listing
}

func NewBuilder(listing drive.Listing) *Builder {
	return &Builder{listing: listing}
}

// BuildCourseStructure walks the folder tree and returns the course
// name plus its top-level modules. Any listing failure aborts the whole
// build; partial trees are never returned. Name resolution alone is
// best effort.
func (b *Builder) BuildCourseStructure(ctx context.Context, sess models.Session, folderID string) (string, []models.Module, error) {
	name, err := b.listing.GetName(ctx, folderID, sess.DriveToken)
	if err != nil || name == "" {
		name = placeholderName
	}

	entries, err := b.listing.List(ctx, folderID, sess.DriveToken)
	if err != nil {
		return "", nil, fmt.Errorf("list course root %s: %w", folderID, err)
	}

	folders, leaves := partition(entries)

	var modules []models.Module
	if len(folders) > 0 {
		modules = make([]models.Module, len(folders))
		g, gctx := errgroup.WithContext(ctx)
		for i, f := range folders {
			i, f := i, f
			g.Go(func() error {
				m, err := b.buildModule(gctx, sess, f, i, 0)
				if err != nil {
					return err
				}
				modules[i] = m
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return "", nil, err
		}
	}

	if bucket, ok := looseFileBucket(folderID, leaves); ok {
		modules = append([]models.Module{bucket}, modules...)
	}

	return name, modules, nil
}

// buildModule lists one folder and recurses into its sub-folders.
// Sibling folders fan out concurrently; one failure aborts the parent.
func (b *Builder) buildModule(ctx context.Context, sess models.Session, folder drive.Entry, order, depth int) (models.Module, error) {
	entries, err := b.listing.List(ctx, folder.ID, sess.DriveToken)
	if err != nil {
		return models.Module{}, fmt.Errorf("list folder %s: %w", folder.ID, err)
	}

	folders, leaves := partition(entries)

	var subModules []models.Module
	if depth < maxDepth && len(folders) > 0 {
		subModules = make([]models.Module, len(folders))
		g, gctx := errgroup.WithContext(ctx)
		for i, f := range folders {
			i, f := i, f
			g.Go(func() error {
				m, err := b.buildModule(gctx, sess, f, i, depth+1)
				if err != nil {
					return err
				}
				subModules[i] = m
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return models.Module{}, err
		}
	}

	return models.Module{
		ID:         folder.ID,
		Name:       folder.Name,
		Lessons:    classify(leaves),
		SubModules: subModules,
		Order:      order,
		Depth:      depth,
	}, nil
}

func partition(entries []drive.Entry) (folders, leaves []drive.Entry) {
	for _, e := range entries {
		if e.IsFolder() {
			folders = append(folders, e)
		} else {
			leaves = append(leaves, e)
		}
	}
	return folders, leaves
}

// classify keeps video and pdf leaves, in listing order, and drops the
// rest before they reach the tree.
func classify(leaves []drive.Entry) []models.Lesson {
	var lessons []models.Lesson
	for _, e := range leaves {
		t := LessonType(e.MimeType)
		if t == models.LessonOther {
			continue
		}
		viewLink := e.WebViewLink
		if viewLink == "" {
			viewLink = drive.FileViewURL(e.ID)
		}
		lessons = append(lessons, models.Lesson{
			ID:           e.ID,
			Name:         stripExtension(e.Name),
			Type:         t,
			FileID:       e.ID,
			MimeType:     e.MimeType,
			WebViewLink:  viewLink,
			ThumbnailURL: drive.ThumbnailURL(e.ID),
			Size:         e.Size,
			Order:        len(lessons),
		})
	}
	return lessons
}

// looseFileBucket synthesizes the catch-all module for classifiable
// files sitting directly in the course root. Order -1 keeps it first.
func looseFileBucket(folderID string, leaves []drive.Entry) (models.Module, bool) {
	lessons := classify(leaves)
	if len(lessons) == 0 {
		return models.Module{}, false
	}
	return models.Module{
		ID:      folderID + "_root",
		Name:    bucketName,
		Lessons: lessons,
		Order:   -1,
		Depth:   0,
	}, true
}

// LessonType classifies a mime type as video, pdf or other.
func LessonType(mimeType string) string {
	if strings.HasPrefix(mimeType, "video/") || mimeType == "application/vnd.google-apps.video" {
		return models.LessonVideo
	}
	if mimeType == "application/pdf" {
		return models.LessonPDF
	}
	return models.LessonOther
}

func stripExtension(name string) string {
	return extensionRe.ReplaceAllString(name, "")
}

// FindModule locates a module by id anywhere in the tree.
func FindModule(modules []models.Module, id string) (models.Module, bool) {
	for _, m := range modules {
		if m.ID == id {
			return m, true
		}
		if found, ok := FindModule(m.SubModules, id); ok {
			return found, true
		}
	}
	return models.Module{}, false
}
