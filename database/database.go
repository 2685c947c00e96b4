package database

import (
	"github.com/rpupo63/academic-portfolio-backend/models"
	"gorm.io/gorm"
)

type Database struct {
	client          Client
	blogPostRepo    *Repository[models.BlogPost]
	publicationRepo *Repository[models.Publication]
	resumeRepo      *Repository[models.Resume]
	experienceRepo  *Repository[models.Experience]
	adminUserRepo   *Repository[models.AdminUser]
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return NewWithClient(NewGormClient(db))
}

// NewWithClient builds every repository on top of the given table client.
func NewWithClient(client Client) Database {
	return Database{
		client:          client,
		blogPostRepo:    NewRepository[models.BlogPost](client),
		publicationRepo: NewRepository[models.Publication](client),
		resumeRepo:      NewRepository[models.Resume](client),
		experienceRepo:  NewRepository[models.Experience](client),
		adminUserRepo:   NewRepository[models.AdminUser](client),
	}
}

// Accessor methods for each repository

func (d Database) Client() Client {
	return d.client
}

func (d Database) BlogPostRepo() *Repository[models.BlogPost] {
	return d.blogPostRepo
}

func (d Database) PublicationRepo() *Repository[models.Publication] {
	return d.publicationRepo
}

func (d Database) ResumeRepo() *Repository[models.Resume] {
	return d.resumeRepo
}

func (d Database) ExperienceRepo() *Repository[models.Experience] {
	return d.experienceRepo
}

func (d Database) AdminUserRepo() *Repository[models.AdminUser] {
	return d.adminUserRepo
}
