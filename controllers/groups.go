package controllers

import (
	"Playnet/middleware"
	models "Playnet/models/postgres"
	"Playnet/services/notifications"
	"Playnet/utils"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func parseGroupID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	return uint(id), err
}

// @Summary Create a group
// @Description Creates a named group with the caller as owner and first
// member.
// @Tags groups
// @Accept x-www-form-urlencoded
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param name formData string true "Group name"
// @Param description formData string false "Description"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/groups [post]
// @Security ApiKeyAuth
func CreateGroup(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		user, err := utils.UserByEmail(db, email)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		name := strings.TrimSpace(c.PostForm("name"))
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Group name is required"})
			return
		}

		group := models.Group{
			Name:          name,
			Description:   c.PostForm("description"),
			OwnerUsername: user.ProfileUsername,
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&group).Error; err != nil {
				return err
			}
			member := models.GroupMember{
				GroupID:  group.ID,
				Username: user.ProfileUsername,
				JoinedAt: time.Now(),
			}
			return tx.Create(&member).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating group"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Group created",
			"group":   gin.H{"id": group.ID, "name": group.Name},
		})
	}
}

// @Summary List the caller's groups
// @Description Returns every group the user belongs to with member counts.
// @Tags groups
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {array} map[string]interface{}
// @Failure 500 {object} object{error=string}
// @Router /auth/groups [get]
// @Security ApiKeyAuth
func ListGroups(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		user, err := utils.UserByEmail(db, email)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		var memberships []models.GroupMember
		if err := db.Preload("Group").Where("username = ?", user.ProfileUsername).
			Find(&memberships).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching groups"})
			return
		}

		groups := make([]gin.H, 0, len(memberships))
		for _, membership := range memberships {
			var memberCount int64
			db.Model(&models.GroupMember{}).
				Where("group_id = ?", membership.GroupID).Count(&memberCount)
			groups = append(groups, gin.H{
				"id":           membership.GroupID,
				"name":         membership.Group.Name,
				"description":  membership.Group.Description,
				"owner":        membership.Group.OwnerUsername,
				"member_count": memberCount,
			})
		}
		c.JSON(http.StatusOK, groups)
	}
}

// @Summary Get group detail
// @Description Returns the group with its member list. Members only.
// @Tags groups
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path integer true "Group id"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/groups/{id} [get]
// @Security ApiKeyAuth
func GetGroupInfo(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		user, err := utils.UserByEmail(db, email)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		groupID, err := parseGroupID(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group id"})
			return
		}

		group, err := utils.CheckGroupExists(db, groupID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
			return
		}

		isMember, err := utils.IsGroupMember(db, groupID, user.ProfileUsername)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking membership"})
			return
		}
		if !isMember {
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this group"})
			return
		}

		var members []models.GroupMember
		db.Where("group_id = ?", groupID).Order("joined_at ASC").Find(&members)
		memberList := make([]gin.H, len(members))
		for i, member := range members {
			memberList[i] = gin.H{
				"username":  member.Username,
				"icon":      utils.UserIcon(db, member.Username),
				"joined_at": member.JoinedAt,
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"id":          group.ID,
			"name":        group.Name,
			"description": group.Description,
			"owner":       group.OwnerUsername,
			"members":     memberList,
		})
	}
}

// @Summary Invite a user to a group
// @Description Sends a group invitation. Members only; duplicates of a
// pending invitation are rejected.
// @Tags groups
// @Accept x-www-form-urlencoded
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path integer true "Group id"
// @Param username formData string true "User to invite"
// @Param message formData string false "Optional message"
// @Success 201 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /auth/groups/{id}/invitations [post]
// @Security ApiKeyAuth
func InviteToGroup(db *gorm.DB, notifier *notifications.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		user, err := utils.UserByEmail(db, email)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		groupID, err := parseGroupID(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group id"})
			return
		}

		group, err := utils.CheckGroupExists(db, groupID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
			return
		}

		isMember, err := utils.IsGroupMember(db, groupID, user.ProfileUsername)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking membership"})
			return
		}
		if !isMember {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only members can invite"})
			return
		}

		invited := strings.TrimSpace(c.PostForm("username"))
		if invited == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
			return
		}
		var profile models.GameProfile
		if err := db.Where("username = ?", invited).First(&profile).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "That user does not exist"})
			return
		}

		alreadyMember, err := utils.IsGroupMember(db, groupID, invited)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking membership"})
			return
		}
		if alreadyMember {
			c.JSON(http.StatusConflict, gin.H{"error": "That user is already a member"})
			return
		}

		var pending int64
		db.Model(&models.GroupInvitation{}).
			Where("group_id = ? AND invited_username = ? AND status = ?",
				groupID, invited, models.InvitationPending).
			Count(&pending)
		if pending > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "That user already has a pending invitation"})
			return
		}

		inv := models.GroupInvitation{
			GroupID:         groupID,
			InviterUsername: user.ProfileUsername,
			InvitedUsername: invited,
			Message:         c.PostForm("message"),
		}
		if err := db.Create(&inv).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating invitation"})
			return
		}

		notifier.Notify([]string{invited}, notifications.GroupInvite{
			GroupID:   group.ID,
			GroupName: group.Name,
			From:      user.ProfileUsername,
			Message:   inv.Message,
		})
		c.JSON(http.StatusCreated, gin.H{"message": "Invitation sent"})
	}
}

// @Summary Leave a group
// @Description Removes the caller's membership. The owner must transfer or
// delete the group instead of leaving it.
// @Tags groups
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path integer true "Group id"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/groups/{id}/leave [post]
// @Security ApiKeyAuth
func LeaveGroup(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		user, err := utils.UserByEmail(db, email)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		groupID, err := parseGroupID(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group id"})
			return
		}

		group, err := utils.CheckGroupExists(db, groupID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
			return
		}
		if group.OwnerUsername == user.ProfileUsername {
			c.JSON(http.StatusBadRequest, gin.H{"error": "The owner cannot leave the group. Delete it instead."})
			return
		}

		result := db.Where("group_id = ? AND username = ?", groupID, user.ProfileUsername).
			Delete(&models.GroupMember{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error leaving group"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "You are not a member of this group"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Left group"})
	}
}

// @Summary Remove a member from a group
// @Description Kicks a member. Owner only; the owner cannot kick itself.
// @Tags groups
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path integer true "Group id"
// @Param username path string true "Member to remove"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/groups/{id}/members/{username} [delete]
// @Security ApiKeyAuth
func KickGroupMember(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		user, err := utils.UserByEmail(db, email)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		groupID, err := parseGroupID(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group id"})
			return
		}

		group, err := utils.CheckGroupExists(db, groupID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
			return
		}
		if group.OwnerUsername != user.ProfileUsername {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can remove members"})
			return
		}

		target := c.Param("username")
		if target == group.OwnerUsername {
			c.JSON(http.StatusBadRequest, gin.H{"error": "The owner cannot be removed"})
			return
		}

		result := db.Where("group_id = ? AND username = ?", groupID, target).
			Delete(&models.GroupMember{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error removing member"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "That user is not a member"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
	}
}

// @Summary Delete a group
// @Description Deletes the group and its memberships. Owner only.
// @Tags groups
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path integer true "Group id"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/groups/{id} [delete]
// @Security ApiKeyAuth
func DeleteGroup(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		user, err := utils.UserByEmail(db, email)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		groupID, err := parseGroupID(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group id"})
			return
		}

		group, err := utils.CheckGroupExists(db, groupID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
			return
		}
		if group.OwnerUsername != user.ProfileUsername {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can delete the group"})
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupMember{}).Error; err != nil {
				return err
			}
			if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupInvitation{}).Error; err != nil {
				return err
			}
			return tx.Delete(group).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting group"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Group deleted"})
	}
}
