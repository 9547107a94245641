package proxy

import (
	"encoding/json"
	"net/http"
)

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeStatus(writer http.ResponseWriter, code int, status, message string) {
	body, _ := json.Marshal(&statusResponse{
		Status:  status,
		Message: message,
	})
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(code)
	writer.Write(body)
}
