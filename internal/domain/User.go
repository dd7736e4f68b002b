package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"      json:"id"`
	Name         string             `bson:"name"               json:"name"`
	Email        string             `bson:"email"              json:"email"`
	PasswordHash string             `bson:"password_hash"      json:"-"`
	Verified     bool               `bson:"is_verified"        json:"isAccountVerified"`

	// OTP fields are either both zero or hold the single outstanding code.
	VerifyOTP       string    `bson:"verify_otp"         json:"-"`
	VerifyOTPExpiry time.Time `bson:"verify_otp_expiry"  json:"-"`
	ResetOTP        string    `bson:"reset_otp"          json:"-"`
	ResetOTPExpiry  time.Time `bson:"reset_otp_expiry"   json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
