// Package services is the business layer between the gin controllers and the shared
// gorm client. Each service takes the validators input types and returns models.
package services
