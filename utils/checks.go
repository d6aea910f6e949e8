package utils

import (
	models "Playnet/models/postgres"
	"fmt"

	"gorm.io/gorm"
)

// UserByEmail resolves the authenticated user row from the JWT email.
func UserByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CheckSessionExists returns the session or a not-found error.
func CheckSessionExists(db *gorm.DB, sessionID string) (*models.GamingSession, error) {
	var session models.GamingSession
	result := db.Where("id = ?", sessionID).First(&session)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("session not found")
		}
		return nil, result.Error
	}
	return &session, nil
}

// CheckGroupExists returns the group or a not-found error.
func CheckGroupExists(db *gorm.DB, groupID uint) (*models.Group, error) {
	var group models.Group
	result := db.Where("id = ?", groupID).First(&group)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("group not found")
		}
		return nil, result.Error
	}
	return &group, nil
}

// IsGroupMember reports whether username belongs to the group.
func IsGroupMember(db *gorm.DB, groupID uint, username string) (bool, error) {
	var count int64
	err := db.Model(&models.GroupMember{}).
		Where("group_id = ? AND username = ?", groupID, username).
		Count(&count).Error
	return count > 0, err
}

// UserIcon returns the icon of the user, defaulting when the profile is
// missing.
func UserIcon(db *gorm.DB, username string) int {
	var icon int
	err := db.Model(&models.GameProfile{}).
		Select("user_icon").
		Where("username = ?", username).
		Find(&icon).Error
	if err != nil {
		return 0
	}
	return icon
}
