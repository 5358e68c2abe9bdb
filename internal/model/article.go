package model

import "time"

// ArticleType: категория работы.
type ArticleType string

const (
	ArticleLaba       ArticleType = "laba"
	ArticleKursova    ArticleType = "kursova"
	ArticleBachDiplom ArticleType = "bach_diplom"
	ArticleMagDiplom  ArticleType = "mag_diplom"
)

// ArticleTypes возвращает все типы работ в фиксированном порядке.
// На этот порядок опирается подсчёт работ по типам.
func ArticleTypes() []ArticleType {
	return []ArticleType{ArticleLaba, ArticleKursova, ArticleBachDiplom, ArticleMagDiplom}
}

// Valid сообщает, входит ли значение в перечисление.
func (t ArticleType) Valid() bool {
	for _, at := range ArticleTypes() {
		if at == t {
			return true
		}
	}
	return false
}

// Article: загруженная работа пользователя.
type Article struct {
	ID     int64 `gorm:"primaryKey;autoIncrement"`
	UserID int64 `gorm:"not null;index"` // ссылка на users.id

	// Связи
	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	Name         string      `gorm:"size:256;not null;default:''"`
	File         string      `gorm:"size:255;not null"` // ключ в медиа-хранилище
	OriginalName string      `gorm:"size:255"`
	Description  string      `gorm:"type:text;not null;default:''"`
	Type         ArticleType `gorm:"size:64;not null;default:laba;index"`

	CreatedAt time.Time `gorm:"autoCreateTime;<-:create"`
}

// DisplayName возвращает подпись работы для списков.
func (a *Article) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.OriginalName
}
