package entities

import (
	"time"
)

type BookType string

const (
	BookTypePhysical BookType = "physical"
	BookTypeDigital  BookType = "digital"
)

type ReadingStatus string

const (
	ReadingStatusRead      ReadingStatus = "read"
	ReadingStatusReading   ReadingStatus = "reading"
	ReadingStatusNotRead   ReadingStatus = "not-read"
	ReadingStatusAbandoned ReadingStatus = "abandoned"
)

type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Username         string     `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Email            string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash     string     `gorm:"size:255" json:"-"`
	TokenHash        string     `gorm:"index;size:64" json:"-"` // SHA-256 of the API token
	TokenCreatedAt   *time.Time `json:"tokenCreatedAt,omitempty"`
	FailedLoginCount int        `gorm:"default:0" json:"-"`
	LockedUntil      *time.Time `json:"-"`
	LastLoginAt      *time.Time `json:"lastLoginAt,omitempty"`
	Theme            string     `gorm:"size:10;not null;default:light" json:"theme"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// IsLocked reports whether the account is temporarily locked after failed logins.
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && time.Now().Before(*u.LockedUntil)
}

// HasToken reports whether an API token has been issued for the user.
func (u *User) HasToken() bool {
	return u.TokenHash != ""
}

type Book struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	UserID    uint          `gorm:"index;not null" json:"userId"`
	Title     string        `gorm:"index;size:200;not null" json:"title"`
	Author    string        `gorm:"size:100;not null" json:"author"`
	Genre     string        `gorm:"size:50" json:"genre"`
	Pages     int           `json:"pages"`
	Type      BookType      `gorm:"size:20" json:"type"`
	Status    ReadingStatus `gorm:"size:20" json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type Author struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"userId"`
	Name         string    `gorm:"index;size:255;not null" json:"name"`
	Nationality  string    `gorm:"size:100" json:"nationality,omitempty"`
	Bio          string    `gorm:"type:text" json:"bio,omitempty"`
	ProfileImage string    `gorm:"size:2048" json:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Collection is an owner-curated grouping of ordered books and unordered authors.
// NextBookOrder is bumped inside every add transaction; it is the row that
// serializes concurrent appends to the same collection.
type Collection struct {
	ID            uint               `gorm:"primaryKey" json:"id"`
	UserID        uint               `gorm:"index;not null" json:"userId"`
	Name          string             `gorm:"size:255;not null" json:"name"`
	Description   string             `gorm:"type:text" json:"description,omitempty"`
	ProfileImage  string             `gorm:"size:2048" json:"profileImage,omitempty"`
	NextBookOrder int                `gorm:"not null;default:0" json:"-"`
	Books         []CollectionBook   `gorm:"foreignKey:CollectionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Authors       []CollectionAuthor `gorm:"foreignKey:CollectionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

type CollectionBook struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CollectionID uint      `gorm:"not null;uniqueIndex:idx_collection_book" json:"collectionId"`
	BookID       uint      `gorm:"not null;uniqueIndex:idx_collection_book;index" json:"bookId"`
	DisplayOrder int       `gorm:"not null;default:0" json:"displayOrder"`
	Book         Book      `gorm:"foreignKey:BookID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CollectionAuthor struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CollectionID uint      `gorm:"not null;uniqueIndex:idx_collection_author" json:"collectionId"`
	AuthorID     uint      `gorm:"not null;uniqueIndex:idx_collection_author;index" json:"authorId"`
	Author       Author    `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// BookAuthor credits an author on a book. A pair exists at most once.
type BookAuthor struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BookID    uint      `gorm:"not null;uniqueIndex:idx_book_author" json:"bookId"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_book_author;index" json:"authorId"`
	Book      Book      `gorm:"foreignKey:BookID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Author    Author    `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// BookOrder assigns a display order to one book of a collection.
type BookOrder struct {
	BookID       uint `json:"bookId"`
	DisplayOrder int  `json:"displayOrder"`
}

func (User) TableName() string {
	return "users"
}

func (Book) TableName() string {
	return "books"
}

func (Author) TableName() string {
	return "authors"
}

func (Collection) TableName() string {
	return "collections"
}

func (CollectionBook) TableName() string {
	return "collection_books"
}

func (CollectionAuthor) TableName() string {
	return "collection_authors"
}

func (BookAuthor) TableName() string {
	return "book_authors"
}
