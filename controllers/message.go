// controllers/message.go
package controllers

import (
	"fmt"
	"log"
	"net/http"

	"recruit-reminder-backend/parser"
	"recruit-reminder-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const helpReply = "予定を登録するには、「カレンダー」ボタンを押すか、「3/15 トヨタ ES提出」のように話しかけてください！"

type InboundMessageInput struct {
	MessagingID string `json:"messagingId" binding:"required"`
	Text        string `json:"text" binding:"required"`
}

type InboundMessageResponse struct {
	Reply    string            `json:"reply"`
	Schedule *ScheduleResponse `json:"schedule,omitempty"`
}

// MessageController turns chat text into schedules and answers with the
// reply text the chat transport should send back.
type MessageController struct {
	Schedules *ScheduleController
	Parser    *parser.Parser
}

func (mc *MessageController) HandleMessage(c *gin.Context) {
	var input InboundMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	ctx := c.Request.Context()
	store := mc.Schedules.Store

	if err := store.TouchUser(ctx, input.MessagingID, mc.Schedules.now()); err != nil {
		log.Printf("Failed to record activity for %s: %v", input.MessagingID, err)
	}

	if !parser.LooksLikeSchedule(input.Text) {
		c.JSON(http.StatusOK, InboundMessageResponse{Reply: helpReply})
		return
	}
	extraction, ok := mc.Parser.Parse(input.Text)
	if !ok {
		c.JSON(http.StatusOK, InboundMessageResponse{Reply: helpReply})
		return
	}

	schedule := extraction.Schedule(uuid.Nil)
	if _, err := store.CreateSchedule(ctx, input.MessagingID, &schedule); err != nil {
		log.Printf("Failed to store parsed schedule for %s: %v", input.MessagingID, err)
		c.JSON(http.StatusOK, InboundMessageResponse{Reply: helpReply})
		return
	}

	resp := mc.Schedules.toResponse(schedule)
	c.JSON(http.StatusOK, InboundMessageResponse{
		Reply: fmt.Sprintf("✅ 登録完了!\n\n企業: %s\n種類: %s\n日時: %s",
			schedule.CompanyName, schedule.Type.DisplayName(), schedule.DateString()),
		Schedule: &resp,
	})
}
