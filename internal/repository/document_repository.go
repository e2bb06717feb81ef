package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"docvault/internal/model"
)

// listing queries never load the blob column
const blobColumn = "file_data"

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// DocumentRepository defines document persistence operations.
type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	Update(ctx context.Context, doc *model.Document) error
	Delete(ctx context.Context, doc *model.Document) error
	FindByID(ctx context.Context, id uint) (*model.Document, error)
	List(ctx context.Context) ([]model.Document, error)
	FindByOwner(ctx context.Context, userID uint) ([]model.Document, error)
	FindByOwnerAndCategory(ctx context.Context, userID uint, category string) ([]model.Document, error)
	FindByOwnerAndFileNameContains(ctx context.Context, userID uint, fragment string) ([]model.Document, error)
	Stats(ctx context.Context) (*model.DocumentStats, error)
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Create inserts a new document row, blob included.
func (r *documentRepository) Create(ctx context.Context, doc *model.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// Update writes the mutable metadata columns of an existing document.
func (r *documentRepository) Update(ctx context.Context, doc *model.Document) error {
	return r.db.WithContext(ctx).Model(doc).
		Select("file_name", "category", "description", "updated_at").
		Updates(doc).Error
}

// Delete removes a document by primary key.
func (r *documentRepository) Delete(ctx context.Context, doc *model.Document) error {
	return r.db.WithContext(ctx).Delete(doc).Error
}

// FindByID loads a single document including its content.
func (r *documentRepository) FindByID(ctx context.Context, id uint) (*model.Document, error) {
	var doc model.Document
	if err := r.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns every document, without content.
func (r *documentRepository) List(ctx context.Context) ([]model.Document, error) {
	return r.find(r.db.WithContext(ctx))
}

// FindByOwner returns the documents owned by userID.
func (r *documentRepository) FindByOwner(ctx context.Context, userID uint) ([]model.Document, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

// FindByOwnerAndCategory matches the category exactly.
func (r *documentRepository) FindByOwnerAndCategory(ctx context.Context, userID uint, category string) ([]model.Document, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ? AND category = ?", userID, category))
}

// FindByOwnerAndFileNameContains matches fragment anywhere in the file name.
// LIKE wildcards inside fragment are matched literally.
func (r *documentRepository) FindByOwnerAndFileNameContains(ctx context.Context, userID uint, fragment string) ([]model.Document, error) {
	pattern := "%" + likeEscaper.Replace(fragment) + "%"
	return r.find(r.db.WithContext(ctx).Where("user_id = ? AND file_name LIKE ? ESCAPE '!'", userID, pattern))
}

// Stats sums the stored content length rather than the recorded file size.
func (r *documentRepository) Stats(ctx context.Context) (*model.DocumentStats, error) {
	var stats model.DocumentStats
	err := r.db.WithContext(ctx).Model(&model.Document{}).
		Select("COUNT(*) AS total_documents, COALESCE(SUM(LENGTH(" + blobColumn + ")), 0) AS total_size").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *documentRepository) find(q *gorm.DB) ([]model.Document, error) {
	docs := []model.Document{}
	if err := q.Omit(blobColumn).Order("id").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}
