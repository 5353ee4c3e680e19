package handlers

import (
	"github.com/digibhoomi/record-translator/internal/service/translation"
	"github.com/digibhoomi/record-translator/pkg/logger"
)

type Handlers struct {
	Translation *TranslationHandler
}

func NewHandlers(
	translationService translation.Service,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Translation: NewTranslationHandler(translationService, log),
	}
}
