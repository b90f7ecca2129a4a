package storage

import (
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ecommerce-backend/internal/apperror"
)

// RefPrefix marks references served by PhotoStore.
const RefPrefix = "gridfs:"

// PhotoStore keeps product photos in a GridFS bucket. References have the
// form "gridfs:<hex id>".
type PhotoStore struct {
	bucket *gridfs.Bucket
}

func NewPhotoStore(db *mongo.Database, bucketName string) (*PhotoStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, errors.Wrap(err, "open gridfs bucket")
	}
	return &PhotoStore{bucket: bucket}, nil
}

func (s *PhotoStore) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperror.Internal("could not store photo", err)
	}

	opts := options.GridFSUpload().SetMetadata(bson.M{"content_type": contentType})
	id, err := s.bucket.UploadFromStream(filename, r, opts)
	if err != nil {
		return "", apperror.Internal("could not store photo", errors.WithStack(err))
	}
	return RefPrefix + id.Hex(), nil
}

// Open streams the photo behind ref. The caller closes the reader.
func (s *PhotoStore) Open(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	id, ok := parseRef(ref)
	if !ok {
		return nil, "", apperror.NotFound("Photo not found")
	}

	var file struct {
		Metadata bson.M `bson:"metadata"`
	}
	cursor, err := s.bucket.FindContext(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, "", apperror.Internal("could not find photo", errors.WithStack(err))
	}
	defer cursor.Close(ctx)
	if !cursor.Next(ctx) {
		return nil, "", apperror.NotFound("Photo not found")
	}
	if err := cursor.Decode(&file); err != nil {
		return nil, "", apperror.Internal("could not read photo metadata", errors.WithStack(err))
	}
	contentType, _ := file.Metadata["content_type"].(string)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	stream, err := s.bucket.OpenDownloadStream(id)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, "", apperror.NotFound("Photo not found")
		}
		return nil, "", apperror.Internal("could not open photo", errors.WithStack(err))
	}
	return stream, contentType, nil
}

func (s *PhotoStore) Delete(ctx context.Context, ref string) error {
	id, ok := parseRef(ref)
	if !ok {
		return nil
	}
	err := s.bucket.DeleteContext(ctx, id)
	if err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return apperror.Internal("could not delete photo", errors.WithStack(err))
	}
	return nil
}

func parseRef(ref string) (primitive.ObjectID, bool) {
	if !strings.HasPrefix(ref, RefPrefix) {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(strings.TrimPrefix(ref, RefPrefix))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
