package models

import "github.com/google/uuid"

const (
	StudentRole    = "student"
	ConsultantRole = "consultant"
	AdminRole      = "admin"
)

type User struct {
	ID       uuid.UUID
	Username string
	Password string
	Email    string
	Roles    []string
}
