package session

import "github.com/zeusync/haptics/internal/core/force"

func modelName(k int) string {
	return "model_" + force.ModelKind(k).String()
}
