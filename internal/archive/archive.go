// Package archive keeps a copy of every generated export for staff.
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gdg-garage/mosaic-visa/internal/export"
	"github.com/gdg-garage/mosaic-visa/internal/models"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("archive: submission not found")

const defaultListLimit = 50

type Archive struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Archive {
	return &Archive{db: db}
}

// Record appends one archived export.
func (a *Archive) Record(ctx context.Context, userID uint, filename string, doc export.Document) (*models.Submission, error) {
	sub := models.Submission{
		UserID:   userID,
		Filename: filename,
		Document: doc,
	}
	if err := a.db.WithContext(ctx).Create(&sub).Error; err != nil {
		return nil, fmt.Errorf("archive submission: %w", err)
	}
	return &sub, nil
}

// Filter narrows List. A zero UserID lists every owner.
type Filter struct {
	UserID uint
	Limit  int
	Offset int
}

// List returns submissions newest first with their owner and agency
// profile, plus the total count matching the filter.
func (a *Archive) List(ctx context.Context, f Filter) ([]models.Submission, int64, error) {
	q := a.db.WithContext(ctx).Model(&models.Submission{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var subs []models.Submission
	err := q.Preload("User.Profile").
		Order("created_at desc, id desc").
		Limit(limit).
		Offset(f.Offset).
		Find(&subs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	return subs, total, nil
}

func (a *Archive) Get(ctx context.Context, id uint) (*models.Submission, error) {
	var sub models.Submission
	err := a.db.WithContext(ctx).Preload("User.Profile").First(&sub, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load submission %d: %w", id, err)
	}
	return &sub, nil
}

// RedactSlot clears the stored slot of a submission.
func (a *Archive) RedactSlot(ctx context.Context, id uint) (*models.Submission, error) {
	sub, err := a.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sub.Document.CommonData.Slot = ""
	if err := a.db.WithContext(ctx).Model(sub).Select("Document").Updates(sub).Error; err != nil {
		return nil, fmt.Errorf("redact submission %d: %w", id, err)
	}
	return sub, nil
}

// Render rebuilds the downloadable file of an archived submission. The
// output is byte-identical to the original download.
func Render(sub *models.Submission) ([]byte, error) {
	return export.File(sub.Document)
}

// BulkExport writes the files of the given submissions into one zip
// archive, named by their stored filenames. Unknown ids are skipped. When
// two submissions share a filename the later one replaces the earlier.
// It returns the number of entries written.
func (a *Archive) BulkExport(ctx context.Context, ids []uint, w io.Writer) (int, error) {
	var subs []models.Submission
	if len(ids) > 0 {
		if err := a.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&subs).Error; err != nil {
			return 0, fmt.Errorf("load submissions: %w", err)
		}
	}

	var names []string
	files := make(map[string][]byte, len(subs))
	for i := range subs {
		content, err := Render(&subs[i])
		if err != nil {
			return 0, fmt.Errorf("render submission %d: %w", subs[i].ID, err)
		}
		name := subs[i].Filename
		if _, seen := files[name]; !seen {
			names = append(names, name)
		}
		files[name] = content
	}

	zw := zip.NewWriter(w)
	for _, name := range names {
		f, err := zw.Create(name)
		if err != nil {
			return 0, fmt.Errorf("add %s to archive: %w", name, err)
		}
		if _, err := f.Write(files[name]); err != nil {
			return 0, fmt.Errorf("write %s to archive: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("close archive: %w", err)
	}
	return len(names), nil
}

// ArchiveName names a bulk download made at t.
func ArchiveName(t time.Time) string {
	return "submissions_" + t.Format("20060102_150405") + ".zip"
}
