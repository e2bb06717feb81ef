package service

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/gabriel-vasile/mimetype"

	apperrors "docvault/internal/errors"
	"docvault/internal/model"
	"docvault/internal/repository"
)

const genericContentType = "application/octet-stream"

// Upload is a received file before it is attached to an owner.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// DocumentPatch lists the metadata fields to overwrite; nil means unchanged.
type DocumentPatch struct {
	FileName    *string
	Category    *string
	Description *string
}

// DocumentService handles document storage operations.
type DocumentService interface {
	UploadDocument(ctx context.Context, upload Upload, userID uint, category, description string) (*model.Document, error)
	GetDocumentByID(ctx context.Context, id uint) (*model.Document, error)
	GetAllDocuments(ctx context.Context) ([]model.Document, error)
	GetAllDocumentsByUserID(ctx context.Context, userID uint) ([]model.Document, error)
	GetDocumentsByUserIDAndCategory(ctx context.Context, userID uint, category string) ([]model.Document, error)
	SearchDocumentsByFileName(ctx context.Context, userID uint, fileName string) ([]model.Document, error)
	DeleteDocument(ctx context.Context, id uint) error
	DownloadDocument(ctx context.Context, id uint) (*model.Document, error)
	UpdateDocument(ctx context.Context, id uint, patch DocumentPatch) (*model.Document, error)
	Stats(ctx context.Context) (*model.DocumentStats, error)
}

type documentService struct {
	docs  repository.DocumentRepository
	users repository.UserRepository
}

// NewDocumentService creates a new document service.
func NewDocumentService(docs repository.DocumentRepository, users repository.UserRepository) DocumentService {
	return &documentService{docs: docs, users: users}
}

// Checksum returns the hex xxhash64 digest used for document content.
func Checksum(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// UploadDocument stores the upload for an existing user. The recorded size
// is the length of the received content.
func (s *documentService) UploadDocument(ctx context.Context, upload Upload, userID uint, category, description string) (*model.Document, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, translateReadError(err, "User not found with id: %d", userID)
	}

	contentType := upload.ContentType
	if contentType == "" || contentType == genericContentType {
		contentType = mimetype.Detect(upload.Data).String()
	}

	doc := &model.Document{
		FileName:    upload.FileName,
		FileType:    contentType,
		FileSize:    int64(len(upload.Data)),
		FileData:    upload.Data,
		Checksum:    Checksum(upload.Data),
		Category:    category,
		Description: description,
		UserID:      userID,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, translateWriteError(err, "upload document")
	}
	return doc, nil
}

func (s *documentService) GetDocumentByID(ctx context.Context, id uint) (*model.Document, error) {
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return nil, translateReadError(err, "Document not found with id: %d", id)
	}
	return doc, nil
}

func (s *documentService) GetAllDocuments(ctx context.Context) ([]model.Document, error) {
	docs, err := s.docs.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err, "list documents")
	}
	return docs, nil
}

func (s *documentService) GetAllDocumentsByUserID(ctx context.Context, userID uint) ([]model.Document, error) {
	docs, err := s.docs.FindByOwner(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err, "list documents of user %d", userID)
	}
	return docs, nil
}

func (s *documentService) GetDocumentsByUserIDAndCategory(ctx context.Context, userID uint, category string) ([]model.Document, error) {
	docs, err := s.docs.FindByOwnerAndCategory(ctx, userID, category)
	if err != nil {
		return nil, apperrors.Internal(err, "list documents of user %d in %q", userID, category)
	}
	return docs, nil
}

func (s *documentService) SearchDocumentsByFileName(ctx context.Context, userID uint, fileName string) ([]model.Document, error) {
	docs, err := s.docs.FindByOwnerAndFileNameContains(ctx, userID, fileName)
	if err != nil {
		return nil, apperrors.Internal(err, "search documents of user %d", userID)
	}
	return docs, nil
}

// DeleteDocument removes a document by id; ownership is not checked.
func (s *documentService) DeleteDocument(ctx context.Context, id uint) error {
	doc, err := s.GetDocumentByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, doc); err != nil {
		return apperrors.Internal(err, "delete document %d", id)
	}
	return nil
}

func (s *documentService) DownloadDocument(ctx context.Context, id uint) (*model.Document, error) {
	return s.GetDocumentByID(ctx, id)
}

// UpdateDocument overwrites metadata only; the stored content is untouched.
func (s *documentService) UpdateDocument(ctx context.Context, id uint, patch DocumentPatch) (*model.Document, error) {
	doc, err := s.GetDocumentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.FileName != nil {
		if *patch.FileName == "" {
			return nil, apperrors.BadInput("fileName must not be empty")
		}
		doc.FileName = *patch.FileName
	}
	if patch.Category != nil {
		doc.Category = *patch.Category
	}
	if patch.Description != nil {
		doc.Description = *patch.Description
	}

	if err := s.docs.Update(ctx, doc); err != nil {
		return nil, translateWriteError(err, "update document %d", id)
	}
	return doc, nil
}

func (s *documentService) Stats(ctx context.Context) (*model.DocumentStats, error) {
	stats, err := s.docs.Stats(ctx)
	if err != nil {
		return nil, apperrors.Internal(err, "document stats")
	}
	return stats, nil
}
