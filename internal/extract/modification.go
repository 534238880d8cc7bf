package extract

import (
	"regexp"

	"github.com/make-ready-tech/oppintel/internal/model"
)

var (
	modificationRe   = regexp.MustCompile(`(?i)modification.*?to previously awarded|contract modification`)
	modNumberRe      = regexp.MustCompile(`(?i:modification\s*\()([A-Z0-9]+)\)`)
	baseContractRe   = regexp.MustCompile(`(?i:previously awarded.*?contract\s*\()([A-Z0-9-]+)\)`)
	optionExerciseRe = regexp.MustCompile(`(?i)to exercise options`)
)

func modification(text string) model.ModificationInfo {
	var info model.ModificationInfo
	if !modificationRe.MatchString(text) {
		return info
	}
	info.IsModification = true

	if m := modNumberRe.FindStringSubmatch(text); m != nil {
		info.ModificationNumber = m[1]
	}
	if m := baseContractRe.FindStringSubmatch(text); m != nil {
		info.BaseContractNumber = m[1]
	}

	if optionExerciseRe.MatchString(text) {
		info.IsOptionExercise = true
		info.ModificationType = "option exercise"
	} else {
		info.ModificationType = "other modification"
	}
	return info
}
