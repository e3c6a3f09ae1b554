package models

import "time"

// Client is a customer that places orders.
// Email and CPF (national tax id) identify the client and are unique;
// name, phone and address are contact fields.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name  string `gorm:"size:255;not null;index" json:"name"`
	Email string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	CPF   string `gorm:"column:cpf;size:14;uniqueIndex;not null" json:"cpf"`

	Phone   string `gorm:"size:50" json:"phone,omitempty"`
	Address string `gorm:"size:500" json:"address,omitempty"`
}
