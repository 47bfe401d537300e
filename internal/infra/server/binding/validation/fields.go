package validation

import (
	"github.com/gin-gonic/gin/binding"

	"github.com/kalyan021004/todoboard/internal/domain/board"
	"github.com/kalyan021004/todoboard/internal/domain/conflict"
	"github.com/kalyan021004/todoboard/internal/domain/task"

	"github.com/rs/zerolog/log"
	"gopkg.in/go-playground/validator.v9"
)

func SetUpValidators() {
	log.Info().Msg("Setting up custom validators")
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation(BoardNameValidatorTag, BoardNameValidator)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to set up Board name validator")
		}
		err = v.RegisterValidation(TaskStatusValidatorTag, TaskStatusValidator)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to set up Task status validator")
		}
		err = v.RegisterValidation(TaskPriorityValidatorTag, TaskPriorityValidator)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to set up Task priority validator")
		}
		err = v.RegisterValidation(ResolutionActionValidatorTag, ResolutionActionValidator)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to set up Resolution action validator")
		}
	}
}

var BoardNameValidatorTag = "boardName"
var BoardNameValidator validator.Func = func(fl validator.FieldLevel) bool {
	boardName, ok := fl.Field().Interface().(board.Name)
	if ok {
		if _, err := board.NameFromString(string(boardName)); err != nil {
			fl.Field()
			return false
		}
	}
	return true
}

var TaskStatusValidatorTag = "taskStatus"
var TaskStatusValidator validator.Func = func(fl validator.FieldLevel) bool {
	status, ok := fl.Field().Interface().(string)
	if ok && status != "" {
		if _, err := task.StatusFromString(status); err != nil {
			fl.Field()
			return false
		}
	}
	return true
}

var TaskPriorityValidatorTag = "taskPriority"
var TaskPriorityValidator validator.Func = func(fl validator.FieldLevel) bool {
	priority, ok := fl.Field().Interface().(string)
	if ok && priority != "" {
		if _, err := task.PriorityFromString(priority); err != nil {
			fl.Field()
			return false
		}
	}
	return true
}

var ResolutionActionValidatorTag = "resolutionAction"
var ResolutionActionValidator validator.Func = func(fl validator.FieldLevel) bool {
	action, ok := fl.Field().Interface().(string)
	if ok && action != "" {
		if _, err := conflict.ActionFromString(action); err != nil {
			fl.Field()
			return false
		}
	}
	return true
}
