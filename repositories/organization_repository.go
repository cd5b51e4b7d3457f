package repository

import (
	"context"

	"github.com/agentdouble/kpix/database"
	"github.com/agentdouble/kpix/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Organization, error)
}

type organizationRepository struct {
	collection *mongo.Collection
}

func NewOrganizationRepository(db *mongo.Database) OrganizationRepository {
	return &organizationRepository{collection: db.Collection(database.CollectionOrganizations)}
}

func (r *organizationRepository) Create(ctx context.Context, org *models.Organization) error {
	org.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, org)
	return translate(err, "organization", org.ID)
}

func (r *organizationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Organization, error) {
	var org models.Organization
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&org); err != nil {
		return nil, translate(err, "organization", id)
	}
	return &org, nil
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, orgID, id primitive.ObjectID) (*models.User, error)
	List(ctx context.Context, orgID primitive.ObjectID) ([]models.User, error)
}

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{collection: db.Collection(database.CollectionUsers)}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, user)
	return translate(err, "user", user.ID)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, translate(err, "user", primitive.NilObjectID)
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, orgID, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	filter := bson.M{"_id": id, "organization_id": orgID}
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translate(err, "user", id)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, orgID primitive.ObjectID) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "email", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"organization_id": orgID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
