package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/agentdouble/kpix/database"
	"github.com/agentdouble/kpix/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ImportJobRepository interface {
	Create(ctx context.Context, job *models.ImportJob) error
	GetByID(ctx context.Context, orgID, id primitive.ObjectID) (*models.ImportJob, error)
	List(ctx context.Context, orgID primitive.ObjectID) ([]models.ImportJob, error)
	Update(ctx context.Context, job *models.ImportJob) error
	// GridFS archive of uploaded files
	UploadFile(ctx context.Context, orgID primitive.ObjectID, filename string, data io.Reader, uploadedBy primitive.ObjectID) (primitive.ObjectID, error)
	DownloadFile(ctx context.Context, fileID primitive.ObjectID) (io.ReadCloser, error)
	DeleteFile(ctx context.Context, fileID primitive.ObjectID) error
}

type importJobRepository struct {
	collection *mongo.Collection
	bucket     *gridfs.Bucket
}

func NewImportJobRepository(db *mongo.Database) (ImportJobRepository, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(database.BucketImportFiles))
	if err != nil {
		return nil, fmt.Errorf("failed to create GridFS bucket: %w", err)
	}

	return &importJobRepository{
		collection: db.Collection(database.CollectionImportJobs),
		bucket:     bucket,
	}, nil
}

func (r *importJobRepository) Create(ctx context.Context, job *models.ImportJob) error {
	job.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, job)
	return translate(err, "import job", job.ID)
}

func (r *importJobRepository) GetByID(ctx context.Context, orgID, id primitive.ObjectID) (*models.ImportJob, error) {
	var job models.ImportJob
	filter := bson.M{"_id": id, "organization_id": orgID}
	if err := r.collection.FindOne(ctx, filter).Decode(&job); err != nil {
		return nil, translate(err, "import job", id)
	}
	return &job, nil
}

func (r *importJobRepository) List(ctx context.Context, orgID primitive.ObjectID) ([]models.ImportJob, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"organization_id": orgID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	jobs := []models.ImportJob{}
	if err = cursor.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *importJobRepository) Update(ctx context.Context, job *models.ImportJob) error {
	filter := bson.M{"_id": job.ID, "organization_id": job.OrganizationID}
	result, err := r.collection.ReplaceOne(ctx, filter, job)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return notFound("import job", job.ID)
	}
	return nil
}

func (r *importJobRepository) UploadFile(ctx context.Context, orgID primitive.ObjectID, filename string, data io.Reader, uploadedBy primitive.ObjectID) (primitive.ObjectID, error) {
	uploadOpts := options.GridFSUpload().SetMetadata(bson.M{
		"organization_id": orgID,
		"uploaded_by":     uploadedBy,
		"uploaded_at":     time.Now().UTC(),
	})

	fileID, err := r.bucket.UploadFromStream(filename, data, uploadOpts)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to upload file to GridFS: %w", err)
	}
	return fileID, nil
}

func (r *importJobRepository) DownloadFile(ctx context.Context, fileID primitive.ObjectID) (io.ReadCloser, error) {
	stream, err := r.bucket.OpenDownloadStream(fileID)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, notFound("import file", fileID)
		}
		return nil, fmt.Errorf("failed to download file from GridFS: %w", err)
	}
	return stream, nil
}

func (r *importJobRepository) DeleteFile(ctx context.Context, fileID primitive.ObjectID) error {
	return r.bucket.Delete(fileID)
}
