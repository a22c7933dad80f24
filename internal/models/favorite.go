package models

// Favorite marks a listing saved by a user. The pair is the identity.
type Favorite struct {
	UserID    uint `gorm:"primaryKey;autoIncrement:false" json:"user_id" yaml:"user_id"`
	ListingID uint `gorm:"primaryKey;autoIncrement:false" json:"listing_id" yaml:"listing_id"`
}
