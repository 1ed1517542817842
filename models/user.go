package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Avatar references an object in the media store.
type Avatar struct {
	ProfileID string `bson:"profileId,omitempty" json:"profileId,omitempty"`
	URL       string `bson:"url,omitempty" json:"url,omitempty"`
}

type Course struct {
	CourseID string `bson:"courseId" json:"courseId"`
}

type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string        `bson:"name" json:"name"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"passwordHash,omitempty" json:"-"` // never expose
	Avatar       Avatar        `bson:"avatar,omitempty" json:"avatar"`
	Role         Role          `bson:"role" json:"role"`
	IsVerified   bool          `bson:"isVerified" json:"isVerified"`
	Courses      []Course      `bson:"courses" json:"courses"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt" json:"updatedAt"`
}
