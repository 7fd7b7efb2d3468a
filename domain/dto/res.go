package dto

type Res struct {
	ResponseCode    string      `json:"response_code"`
	ResponseMessage string      `json:"response_message"`
	Data            interface{} `json:"data,omitempty"`
}

type ResLogin struct {
	Token string `json:"token"`
}
