package model

type UserData struct {
	ID             uint   `json:"-" bson:"-" gorm:"primaryKey"`
	Login          string `json:"login" bson:"login" gorm:"uniqueIndex"`
	HashedPassword string `json:"password_hash" bson:"password_hash"`
	Role           string `json:"role" bson:"role"`
}

const RoleAdmin = "admin"
