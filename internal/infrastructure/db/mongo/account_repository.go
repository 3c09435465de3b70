package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicpulse/grievance-portal/internal/core/domain"
	"github.com/civicpulse/grievance-portal/internal/core/ports"
)

const (
	accountCollection = "accounts"
	counterCollection = "counters"
	accountCounterID  = "accounts"
)

// AccountRepository is the account directory backed by MongoDB. Every
// document carries a monotonically increasing seq so "first account with a
// role" follows registration order.
type AccountRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
	now      func() time.Time
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{
		coll:     db.Collection(accountCollection),
		counters: db.Collection(counterCollection),
		now:      time.Now,
	}
}

type mongoAccount struct {
	ID            primitive.ObjectID        `bson:"_id,omitempty"`
	AccountID     string                    `bson:"account_id"`
	Seq           int64                     `bson:"seq"`
	Name          string                    `bson:"name"`
	Email         string                    `bson:"email"`
	EmailLower    string                    `bson:"email_lower"`
	PasswordHash  string                    `bson:"password_hash,omitempty"`
	Role          string                    `bson:"role"`
	Points        *int                      `bson:"points,omitempty"`
	Avatar        string                    `bson:"avatar,omitempty"`
	Phone         string                    `bson:"phone,omitempty"`
	Location      string                    `bson:"location,omitempty"`
	JoinDate      string                    `bson:"join_date,omitempty"`
	Bio           string                    `bson:"bio,omitempty"`
	Badges        []string                  `bson:"badges,omitempty"`
	Notifications *domain.NotificationPrefs `bson:"notifications,omitempty"`
	CreatedAt     int64                     `bson:"created_at"`
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email_lower": strings.ToLower(email)})
}

func (r *AccountRepository) FindFirstByRole(ctx context.Context, role domain.Role) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"role": string(role)})
}

func (r *AccountRepository) Count(ctx context.Context) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return int(n), nil
}

// Create inserts user with the next sequence number. Duplicate emails are
// accepted; lookups return the earliest match.
func (r *AccountRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	seq, err := r.nextSeq(ctx)
	if err != nil {
		return nil, err
	}

	doc := toDocument(user)
	doc.Seq = seq
	doc.CreatedAt = r.now().Unix()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return user.Clone(), nil
}

// Seed inserts accounts in order when the directory is empty.
func (r *AccountRepository) Seed(ctx context.Context, accounts []*domain.User) (int, error) {
	n, err := r.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	for i, u := range accounts {
		if _, err := r.Create(ctx, u); err != nil {
			return i, fmt.Errorf("seed account %s: %w", u.Email, err)
		}
	}
	return len(accounts), nil
}

// EnsureIndexes creates the lookup indexes on the accounts collection.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email_lower", Value: 1}, {Key: "seq", Value: 1}}},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "seq", Value: 1}}},
		{Keys: bson.D{{Key: "seq", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "seq", Value: 1}})

	var doc mongoAccount
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) nextSeq(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Value int64 `bson:"value"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": accountCounterID},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next account seq: %w", err)
	}
	return counter.Value, nil
}

func toDocument(u *domain.User) mongoAccount {
	c := u.Clone()
	return mongoAccount{
		AccountID:     c.ID,
		Name:          c.Name,
		Email:         c.Email,
		EmailLower:    strings.ToLower(c.Email),
		PasswordHash:  c.PasswordHash,
		Role:          string(c.Role),
		Points:        c.Points,
		Avatar:        c.Avatar,
		Phone:         c.Phone,
		Location:      c.Location,
		JoinDate:      c.JoinDate,
		Bio:           c.Bio,
		Badges:        c.Badges,
		Notifications: c.Notifications,
	}
}

func (d mongoAccount) toDomain() *domain.User {
	return &domain.User{
		ID:            d.AccountID,
		Name:          d.Name,
		Email:         d.Email,
		PasswordHash:  d.PasswordHash,
		Role:          domain.Role(d.Role),
		Points:        d.Points,
		Avatar:        d.Avatar,
		Phone:         d.Phone,
		Location:      d.Location,
		JoinDate:      d.JoinDate,
		Bio:           d.Bio,
		Badges:        d.Badges,
		Notifications: d.Notifications,
	}
}
