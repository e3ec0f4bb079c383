package course

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"drivestudy/backend/drive"
	"drivestudy/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeListing struct {
	names    map[string]string
	children map[string][]drive.Entry
	listErr  map[string]error
	nameErr  error

	mu     sync.Mutex
	listed []string
}

func (f *fakeListing) List(_ context.Context, folderID, _ string) ([]drive.Entry, error) {
	f.mu.Lock()
	f.listed = append(f.listed, folderID)
	f.mu.Unlock()

	if err, ok := f.listErr[folderID]; ok {
		return nil, err
	}
	return f.children[folderID], nil
}

func (f *fakeListing) GetName(_ context.Context, folderID, _ string) (string, error) {
	if f.nameErr != nil {
		return "", f.nameErr
	}
	return f.names[folderID], nil
}

func (f *fakeListing) listedCount(folderID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, id := range f.listed {
		if id == folderID {
			n++
		}
	}
	return n
}

func folder(id, name string) drive.Entry {
	return drive.Entry{ID: id, Name: name, MimeType: drive.FolderMimeType}
}

func video(id, name string) drive.Entry {
	return drive.Entry{ID: id, Name: name, MimeType: "video/mp4"}
}

func pdf(id, name string) drive.Entry {
	return drive.Entry{ID: id, Name: name, MimeType: "application/pdf"}
}

var testSession = models.Session{UserID: "user@example.com", DriveToken: "tok"}

func TestBuildCourseStructure(t *testing.T) {
	listing := &fakeListing{
		names: map[string]string{"root": "My Course"},
		children: map[string][]drive.Entry{
			"root":   {folder("unit1", "Unit 1"), folder("unit2", "Unit 2")},
			"unit1":  {pdf("l1", "lesson.pdf"), folder("topicA", "Topic A")},
			"topicA": {video("v1", "intro.mp4")},
			"unit2":  {},
		},
	}
	b := NewBuilder(listing)

	name, modules, err := b.BuildCourseStructure(context.Background(), testSession, "root")
	require.NoError(t, err)
	assert.Equal(t, "My Course", name)
	require.Len(t, modules, 2)

	unit1 := modules[0]
	assert.Equal(t, "Unit 1", unit1.Name)
	assert.Equal(t, 0, unit1.Depth)
	require.Len(t, unit1.Lessons, 1)
	assert.Equal(t, "lesson", unit1.Lessons[0].Name)
	assert.Equal(t, models.LessonPDF, unit1.Lessons[0].Type)

	require.Len(t, unit1.SubModules, 1)
	topicA := unit1.SubModules[0]
	assert.Equal(t, "Topic A", topicA.Name)
	assert.Equal(t, 1, topicA.Depth)
	require.Len(t, topicA.Lessons, 1)
	assert.Equal(t, "intro", topicA.Lessons[0].Name)
	assert.Equal(t, models.LessonVideo, topicA.Lessons[0].Type)

	unit2 := modules[1]
	assert.Equal(t, "Unit 2", unit2.Name)
	assert.Empty(t, unit2.Lessons)
	assert.Empty(t, unit2.SubModules)
}

func TestBuildIsDeterministic(t *testing.T) {
	listing := &fakeListing{
		names: map[string]string{"root": "My Course"},
		children: map[string][]drive.Entry{
			"root":  {folder("a", "A"), folder("b", "B"), folder("c", "C")},
			"a":     {video("av", "one.mp4"), pdf("ap", "two.pdf")},
			"b":     {folder("b1", "B1")},
			"b1":    {video("bv", "deep.mp4")},
			"c":     {},
		},
	}
	b := NewBuilder(listing)

	_, first, err := b.BuildCourseStructure(context.Background(), testSession, "root")
	require.NoError(t, err)
	_, second, err := b.BuildCourseStructure(context.Background(), testSession, "root")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLooseFileBucket(t *testing.T) {
	listing := &fakeListing{
		names: map[string]string{"root": "My Course"},
		children: map[string][]drive.Entry{
			"root": {
				video("v1", "loose.mp4"),
				folder("unit1", "Unit 1"),
				pdf("p1", "notes.pdf"),
				{ID: "x1", Name: "readme.txt", MimeType: "text/plain"},
			},
			"unit1": {pdf("l1", "lesson.pdf")},
		},
	}
	b := NewBuilder(listing)

	_, modules, err := b.BuildCourseStructure(context.Background(), testSession, "root")
	require.NoError(t, err)
	require.Len(t, modules, 2)

	bucket := modules[0]
	assert.Equal(t, "root_root", bucket.ID)
	assert.Equal(t, "General", bucket.Name)
	assert.Equal(t, -1, bucket.Order)
	assert.Empty(t, bucket.SubModules)
	require.Len(t, bucket.Lessons, 2)
	assert.Equal(t, "loose", bucket.Lessons[0].Name)
	assert.Equal(t, "notes", bucket.Lessons[1].Name)
}

func TestNoBucketWithoutLooseFiles(t *testing.T) {
	listing := &fakeListing{
		names: map[string]string{"root": "My Course"},
		children: map[string][]drive.Entry{
			"root": {
				folder("unit1", "Unit 1"),
				{ID: "x1", Name: "readme.txt", MimeType: "text/plain"},
			},
			"unit1": {pdf("l1", "lesson.pdf")},
		},
	}
	b := NewBuilder(listing)

	_, modules, err := b.BuildCourseStructure(context.Background(), testSession, "root")
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.NotEqual(t, -1, modules[0].Order)
}

func TestDepthCap(t *testing.T) {
	children := map[string][]drive.Entry{
		"root": {folder("d0", "D0")},
	}
	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("d%d", i)
		children[id] = []drive.Entry{
			video(fmt.Sprintf("v%d", i), fmt.Sprintf("clip%d.mp4", i)),
			folder(fmt.Sprintf("d%d", i+1), fmt.Sprintf("D%d", i+1)),
		}
	}
	listing := &fakeListing{
		names:    map[string]string{"root": "Deep"},
		children: children,
	}
	b := NewBuilder(listing)

	_, modules, err := b.BuildCourseStructure(context.Background(), testSession, "root")
	require.NoError(t, err)
	require.Len(t, modules, 1)

	mod := modules[0]
	depth := 0
	for len(mod.SubModules) > 0 {
		require.Len(t, mod.SubModules, 1)
		mod = mod.SubModules[0]
		depth++
	}
	assert.Equal(t, 3, mod.Depth)
	assert.Equal(t, 3, depth)
	require.Len(t, mod.Lessons, 1)

	// Folders past the cap are never even listed.
	assert.Equal(t, 0, listing.listedCount("d4"))
	assert.Equal(t, 1, listing.listedCount("d3"))
}

func TestListFailureAbortsBuild(t *testing.T) {
	boom := errors.New("quota exceeded")
	listing := &fakeListing{
		names: map[string]string{"root": "My Course"},
		children: map[string][]drive.Entry{
			"root":  {folder("unit1", "Unit 1"), folder("unit2", "Unit 2")},
			"unit1": {pdf("l1", "lesson.pdf")},
		},
		listErr: map[string]error{"unit2": boom},
	}
	b := NewBuilder(listing)

	_, modules, err := b.BuildCourseStructure(context.Background(), testSession, "root")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, modules)
}

func TestRootNameFallback(t *testing.T) {
	listing := &fakeListing{
		nameErr: errors.New("no access to metadata"),
		children: map[string][]drive.Entry{
			"root":  {folder("unit1", "Unit 1")},
			"unit1": {pdf("l1", "lesson.pdf")},
		},
	}
	b := NewBuilder(listing)

	name, modules, err := b.BuildCourseStructure(context.Background(), testSession, "root")
	require.NoError(t, err)
	assert.Equal(t, "Course", name)
	assert.Len(t, modules, 1)
}

func TestLessonLinks(t *testing.T) {
	listing := &fakeListing{
		names: map[string]string{"root": "My Course"},
		children: map[string][]drive.Entry{
			"root":  {folder("unit1", "Unit 1")},
			"unit1": {
				{ID: "v1", Name: "intro.mp4", MimeType: "video/mp4", WebViewLink: "https://view/v1"},
				pdf("p1", "notes.pdf"),
			},
		},
	}
	b := NewBuilder(listing)

	_, modules, err := b.BuildCourseStructure(context.Background(), testSession, "root")
	require.NoError(t, err)
	require.Len(t, modules, 1)
	require.Len(t, modules[0].Lessons, 2)

	withLink := modules[0].Lessons[0]
	assert.Equal(t, "https://view/v1", withLink.WebViewLink)
	assert.Equal(t, drive.ThumbnailURL("v1"), withLink.ThumbnailURL)

	// A listing without a view link falls back to the Drive viewer URL.
	withoutLink := modules[0].Lessons[1]
	assert.Equal(t, drive.FileViewURL("p1"), withoutLink.WebViewLink)
	assert.Equal(t, drive.ThumbnailURL("p1"), withoutLink.ThumbnailURL)
}

func TestLessonType(t *testing.T) {
	assert.Equal(t, models.LessonVideo, LessonType("video/mp4"))
	assert.Equal(t, models.LessonVideo, LessonType("application/vnd.google-apps.video"))
	assert.Equal(t, models.LessonPDF, LessonType("application/pdf"))
	assert.Equal(t, models.LessonOther, LessonType("text/plain"))
	assert.Equal(t, models.LessonOther, LessonType(""))
}

func TestStripExtension(t *testing.T) {
	assert.Equal(t, "intro", stripExtension("intro.mp4"))
	assert.Equal(t, "lecture 01.final", stripExtension("lecture 01.final.pdf"))
	assert.Equal(t, "noext", stripExtension("noext"))
}

func TestFindModule(t *testing.T) {
	modules := []models.Module{
		{ID: "a", SubModules: []models.Module{{ID: "a1"}, {ID: "a2", SubModules: []models.Module{{ID: "a2x"}}}}},
		{ID: "b"},
	}
	found, ok := FindModule(modules, "a2x")
	require.True(t, ok)
	assert.Equal(t, "a2x", found.ID)

	_, ok = FindModule(modules, "missing")
	assert.False(t, ok)
}
