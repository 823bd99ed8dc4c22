package printer

import (
	"github.com/sidequests/questd/internal/achievement"
	"github.com/sidequests/questd/internal/app/userstats"
	"github.com/sidequests/questd/internal/model"
)

// Printer knows how to print marketplace information in different formats.
type Printer interface {
	PrintTaskList(tasks []model.Task) error
	PrintTask(task model.Task) error
	PrintProfile(profile userstats.Result) error
	PrintBadges(badges []achievement.Badge) error
	PrintMessage(msg string) error
}
