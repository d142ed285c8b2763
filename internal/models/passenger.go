package models

import "gorm.io/gorm"

// Passenger is a confirmed seat on a ride. Phone and location are snapshots
// taken at request time, so later profile edits don't change what the driver
// agreed to.
type Passenger struct {
	gorm.Model
	RideID   uint   `json:"ride_id" gorm:"index"`
	UserID   uint   `json:"user_id" gorm:"index"` // zero when added off-app by the driver
	User     User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}
