package repo

import (
	"context"
	"errors"
	"time"

	"github.com/tazhibayda/authflow/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.insert")
	defer sp.Finish()

	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	res, err := s.colUsers.InsertOne(ctx, u)
	if err != nil {
		sp.SetTag("error", err)
		if IsDup(err) {
			return ErrDuplicate
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.find_by_email")
	defer sp.Finish()
	return s.findOne(ctx, sp, bson.M{"email": email})
}

func (s *Store) FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.find_by_id",
		tracer.Tag("user_id", id.Hex()),
	)
	defer sp.Finish()
	return s.findOne(ctx, sp, bson.M{"_id": id})
}

func (s *Store) findOne(ctx context.Context, sp ddtrace.Span, filter bson.M) (*domain.User, error) {
	var u domain.User
	err := s.colUsers.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	return &u, nil
}

// SetVerifyOTP overwrites any outstanding verification code (last write wins).
func (s *Store) SetVerifyOTP(ctx context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error {
	return s.update(ctx, "mongo.users.set_verify_otp", bson.M{"_id": id}, bson.M{
		"verify_otp":        code,
		"verify_otp_expiry": expiresAt.UTC(),
	})
}

// ConsumeVerifyOTP marks the user verified and clears the code, but only if
// code is still the stored one.
func (s *Store) ConsumeVerifyOTP(ctx context.Context, id primitive.ObjectID, code string) error {
	if code == "" {
		return ErrStale
	}
	return s.update(ctx, "mongo.users.consume_verify_otp", bson.M{"_id": id, "verify_otp": code}, bson.M{
		"is_verified":       true,
		"verify_otp":        "",
		"verify_otp_expiry": time.Time{},
	})
}

// SetResetOTP overwrites any outstanding reset code (last write wins).
func (s *Store) SetResetOTP(ctx context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error {
	return s.update(ctx, "mongo.users.set_reset_otp", bson.M{"_id": id}, bson.M{
		"reset_otp":        code,
		"reset_otp_expiry": expiresAt.UTC(),
	})
}

// ConsumeResetOTP replaces the password hash and clears the code, but only if
// code is still the stored one.
func (s *Store) ConsumeResetOTP(ctx context.Context, id primitive.ObjectID, code, passwordHash string) error {
	if code == "" {
		return ErrStale
	}
	return s.update(ctx, "mongo.users.consume_reset_otp", bson.M{"_id": id, "reset_otp": code}, bson.M{
		"password_hash":    passwordHash,
		"reset_otp":        "",
		"reset_otp_expiry": time.Time{},
	})
}

func (s *Store) update(ctx context.Context, op string, filter, set bson.M) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, op)
	defer sp.Finish()

	set["updated_at"] = time.Now().UTC()
	res, err := s.colUsers.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		sp.SetTag("error", err)
		return err
	}
	if res.MatchedCount == 0 {
		if _, ok := filter["verify_otp"]; ok {
			return ErrStale
		}
		if _, ok := filter["reset_otp"]; ok {
			return ErrStale
		}
		return ErrNotFound
	}
	return nil
}
