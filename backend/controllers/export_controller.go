package controllers

import (
	"fmt"
	"studytrack/backend/config"
	"studytrack/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ExportController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewExportController(db *gorm.DB, cfg *config.Config) *ExportController {
	return &ExportController{DB: db, Cfg: cfg}
}

// ExportSessions streams the user's study sessions as an xlsx
// workbook, one row per session, newest first.
func (ec *ExportController) ExportSessions(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	sessions := loadSessions(ec.DB, userID)

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sessions"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Task", "Date", "Start", "End", "Duration (min)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, s := range sessions {
		end := ""
		if s.EndTime != nil {
			end = s.EndTime.Format("15:04:05")
		}
		values := []interface{}{
			s.TaskName,
			s.Date,
			s.StartTime.Format("15:04:05"),
			end,
			s.Duration / 60,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return utils.InternalServerError(c, "Could not build workbook")
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "study-sessions.xlsx"))
	return c.Send(buf.Bytes())
}
