package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"liveroom/internal/middleware"
	"liveroom/internal/models"
	"liveroom/internal/service"
)

// RoomHandler 處理房間的建立、查詢、加入與對戰流程
type RoomHandler struct {
	services *service.Services
}

func NewRoomHandler(services *service.Services) *RoomHandler {
	return &RoomHandler{services: services}
}

// CreateRoomInput 定義建立房間的請求內容
type CreateRoomInput struct {
	ActivityID *int64            `json:"activity_id" binding:"required"`
	Difficulty models.Difficulty `json:"difficulty" binding:"required"`
}

// JoinRoomInput 定義加入房間的請求內容
type JoinRoomInput struct {
	Difficulty models.Difficulty `json:"difficulty" binding:"required"`
}

// EndRoomInput 定義回報成績的請求內容
type EndRoomInput struct {
	JudgeCounts []int `json:"judge_counts" binding:"required"`
	Score       *int  `json:"score" binding:"required"`
}

// CreateRoom 建立房間，呼叫者成為房主
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var input CreateRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	roomID, err := h.services.Room.CreateRoom(c.Request.Context(), *input.ActivityID, input.Difficulty, c.GetString(middleware.ContextToken), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"room_id": roomID})
}

// ListRooms 列出指定曲目中仍可加入的房間
func (h *RoomHandler) ListRooms(c *gin.Context) {
	activityID, err := strconv.ParseInt(c.Query("activity_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "activity_id is required"})
		return
	}

	rooms, err := h.services.Room.ListRooms(c.Request.Context(), activityID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// JoinRoom 回傳 join_result；房間已滿或已解散屬於正常結果，以 200 回應
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var input JoinRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"join_result": service.JoinNotFound, "error": err.Error()})
		return
	}

	outcome, err := h.services.Membership.Join(c.Request.Context(), roomID, input.Difficulty, userID)
	if err != nil {
		// 錯誤回應同樣帶結果碼 4
		status := statusFor(err)
		message := err.Error()
		if status == http.StatusInternalServerError {
			_ = c.Error(err)
			message = service.ErrInternal.Error()
		}
		c.JSON(status, gin.H{"join_result": service.JoinNotFound, "error": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"join_result": outcome})
}

// Wait 供成員輪詢房間狀態與成員列表
func (h *RoomHandler) Wait(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := h.services.Session.Wait(c.Request.Context(), roomID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Start 只有房主能開始；其他人呼叫同樣回 200
func (h *RoomHandler) Start(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.services.Session.Start(c.Request.Context(), roomID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (h *RoomHandler) End(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var input EndRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Session.End(c.Request.Context(), roomID, userID, *input.Score, input.JudgeCounts); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "result recorded"})
}

// Result 在所有成員結束前回傳空陣列
func (h *RoomHandler) Result(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}

	results, err := h.services.Result.Result(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *RoomHandler) Leave(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.services.Membership.Leave(c.Request.Context(), roomID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "left room"})
}
