package http

type sendMessageReq struct {
	Text string `json:"text"`
}

type createProjectReq struct {
	Title string `json:"title"`
}

type editArtifactReq struct {
	Content string `json:"content"`
}
