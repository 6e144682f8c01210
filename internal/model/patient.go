package model

type Patient struct {
	Base
	FirstName  string  `db:"first_name" json:"first_name"`
	LastName   string  `db:"last_name" json:"last_name"`
	DocumentID string  `db:"document_id" json:"document_id"`
	Email      *string `db:"email" json:"email,omitempty"`
	Phone      *string `db:"phone" json:"phone,omitempty"`
	Active     bool    `db:"active" json:"active"`
}

type CreatePatientRequest struct {
	FirstName  string  `json:"first_name" binding:"required,max=80"`
	LastName   string  `json:"last_name" binding:"required,max=80"`
	DocumentID string  `json:"document_id" binding:"required,max=20"`
	Email      *string `json:"email" binding:"omitempty,email"`
	Phone      *string `json:"phone" binding:"omitempty,max=30"`
}

type UpdatePatientRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone"`
	Active    *bool   `json:"active"`
}
