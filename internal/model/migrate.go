package model

import "gorm.io/gorm"

// AutoMigrate выполняет миграцию всех сущностей ядра.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&CarWash{},
		&User{},
		&Service{},
		&Appointment{},
		&SubscriptionPlan{},
		&Subscription{},
		&Transaction{},
	)
}
