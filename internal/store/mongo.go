package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jobportal/aggregator/internal/scraper"
)

const (
	usersCollection = "users"
	jobsCollection  = "jobs"
)

type User struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name               string             `bson:"name" json:"name"`
	Email              string             `bson:"email" json:"email"`
	Role               string             `bson:"role" json:"role"`
	CompanyName        string             `bson:"companyName,omitempty" json:"companyName,omitempty"`
	CompanyDescription string             `bson:"companyDescription,omitempty" json:"companyDescription,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
}

type Job struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string             `bson:"title" json:"title"`
	Description     string             `bson:"description" json:"description"`
	Requirements    []string           `bson:"requirements" json:"requirements"`
	Location        string             `bson:"location" json:"location"`
	Salary          *scraper.Salary    `bson:"salary,omitempty" json:"salary,omitempty"`
	JobType         string             `bson:"jobType" json:"jobType"`
	Category        string             `bson:"category" json:"category"`
	Company         primitive.ObjectID `bson:"company" json:"company"`
	Status          string             `bson:"status" json:"status"`
	ExperienceLevel string             `bson:"experienceLevel" json:"experienceLevel"`
	CompanyLogo     string             `bson:"companyLogo,omitempty" json:"companyLogo,omitempty"`
	Source          string             `bson:"source,omitempty" json:"source,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Store struct {
	client *mongo.Client
	users  *mongo.Collection
	jobs   *mongo.Collection
}

func New(ctx context.Context, uri, database string) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping store: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client: client,
		users:  db.Collection(usersCollection),
		jobs:   db.Collection(jobsCollection),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	return s, nil
}

// ensureIndexes backs the two uniqueness invariants: one user per email
// (the system identity upsert keys on it) and one job per (title, company).
func (s *Store) ensureIndexes(ctx context.Context) error {
	idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.users.Indexes().CreateOne(idxCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = s.jobs.Indexes().CreateOne(idxCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "title", Value: 1}, {Key: "company", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.client.Ping(pingCtx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// UpsertSystemUser inserts the user keyed by email unless one already
// exists, and returns the stored document's id either way. $setOnInsert
// plus the unique email index makes concurrent callers converge on a
// single identity.
func (s *Store) UpsertSystemUser(ctx context.Context, u User) (primitive.ObjectID, error) {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	u.CreatedAt = time.Now().UTC()
	update := bson.M{"$setOnInsert": u}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored User
	err := s.users.FindOneAndUpdate(opCtx, bson.M{"email": u.Email}, update, opts).Decode(&stored)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return stored.ID, nil
}

// FindJobByTitleAndCompany returns nil without error when no job matches.
func (s *Store) FindJobByTitleAndCompany(ctx context.Context, title string, company primitive.ObjectID) (*Job, error) {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var job Job
	err := s.jobs.FindOne(opCtx, bson.M{"title": title, "company": company}).Decode(&job)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *Store) InsertJob(ctx context.Context, job Job) error {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = "active"
	}
	_, err := s.jobs.InsertOne(opCtx, job)
	return err
}

func (s *Store) ListJobs(ctx context.Context, limit, offset int) ([]Job, int64, error) {
	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	total, err := s.jobs.CountDocuments(opCtx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))
	cursor, err := s.jobs.Find(opCtx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(opCtx)

	var jobs []Job
	if err := cursor.All(opCtx, &jobs); err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}
