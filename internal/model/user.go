package model

import "time"

// CampusType: роль пользователя в кампусе.
type CampusType string

const (
	CampusTeacher CampusType = "teacher"
	CampusStudent CampusType = "student"
)

// CampusTypes возвращает роли в фиксированном порядке (для форм и фильтров).
func CampusTypes() []CampusType {
	return []CampusType{CampusTeacher, CampusStudent}
}

// Valid сообщает, входит ли значение в перечисление.
func (c CampusType) Valid() bool {
	return c == CampusTeacher || c == CampusStudent
}

// Ограничения на поля пользователя.
const (
	UsernameMaxLen = 40
	EmailMaxLen    = 100
)

// User: учётная запись портала. Логин выполняется по email.
type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Username string `gorm:"size:40;not null;default:''"`
	Email    string `gorm:"size:100;uniqueIndex;not null"`
	Password string `gorm:"not null"` // bcrypt-хеш, сырой пароль не храним

	FirstName string `gorm:"size:150"`
	LastName  string `gorm:"size:150"`

	Photo      string     `gorm:"size:255"` // ключ в медиа-хранилище
	CampusType CampusType `gorm:"size:8;not null;default:student"`
	Bio        *string

	IsActive    bool `gorm:"not null"`
	IsStaff     bool `gorm:"not null"`
	IsSuperuser bool `gorm:"not null"`

	DateJoined time.Time `gorm:"autoCreateTime"`
	LastLogin  *time.Time
}

// BioText возвращает bio или пустую строку.
func (u *User) BioText() string {
	if u == nil || u.Bio == nil {
		return ""
	}
	return *u.Bio
}
