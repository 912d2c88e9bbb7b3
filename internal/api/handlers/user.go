package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"liveroom/internal/service"
)

// UserHandler 處理玩家建立與個人資料
type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserInput 是建立與更新玩家共用的請求內容
type UserInput struct {
	Name         string `json:"name" binding:"required"`
	LeaderCardID int64  `json:"leader_card_id"`
}

// CreateUser 建立玩家並回傳之後請求要帶的 bearer token
func (h *UserHandler) CreateUser(c *gin.Context) {
	var input UserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.userService.CreateUser(c.Request.Context(), input.Name, input.LeaderCardID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user_id": user.ID, "token": token})
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.userService.Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":             user.ID,
		"name":           user.Name,
		"leader_card_id": user.LeaderCardID,
	})
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var input UserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userService.UpdateUser(c.Request.Context(), userID, input.Name, input.LeaderCardID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user updated"})
}
