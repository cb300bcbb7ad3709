package model

import "time"

type User struct {
	ID                string            `json:"id,omitempty" bson:"_id,omitempty"`
	Name              string            `json:"name" bson:"name"`
	PhoneNumber       string            `json:"phone_number" bson:"phone_number"`
	Age               int               `json:"age" bson:"age"`
	Pincode           string            `json:"pincode" bson:"pincode"`
	AadharNo          string            `json:"aadhar_no" bson:"aadhar_no"`
	Password          string            `json:"-" bson:"password"`
	VaccinationStatus VaccinationStatus `json:"vaccination_status" bson:"vaccination_status"`
	RegisteredSlot    string            `json:"registered_slot,omitempty" bson:"registered_slot,omitempty"`
	CreatedAt         time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" bson:"updated_at"`
}

type UserRegistration struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	PhoneNumber string `json:"phoneNumber" validate:"required,max=20,phone"`
	Age         *int   `json:"age" validate:"required,gte=0,lte=150"`
	Pincode     string `json:"pincode" validate:"required,len=6,numeric"`
	AadharNo    string `json:"aadharNo" validate:"required,len=12,numeric"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
}

func (r *UserRegistration) ToUser() *User {
	u := &User{
		Name:              r.Name,
		PhoneNumber:       r.PhoneNumber,
		Pincode:           r.Pincode,
		AadharNo:          r.AadharNo,
		Password:          r.Password,
		VaccinationStatus: StatusNone,
	}
	if r.Age != nil {
		u.Age = *r.Age
	}
	return u
}

type UserLogin struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

// UserFilter narrows admin user counts. Zero values mean "any".
type UserFilter struct {
	Age               *int
	Pincode           string
	VaccinationStatus VaccinationStatus
}

// UserSummary is the user view embedded in admin slot listings.
type UserSummary struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	PhoneNumber       string            `json:"phone_number"`
	Age               int               `json:"age"`
	Pincode           string            `json:"pincode"`
	VaccinationStatus VaccinationStatus `json:"vaccination_status"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:                u.ID,
		Name:              u.Name,
		PhoneNumber:       u.PhoneNumber,
		Age:               u.Age,
		Pincode:           u.Pincode,
		VaccinationStatus: u.VaccinationStatus,
	}
}
