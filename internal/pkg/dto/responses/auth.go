package responses

type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
}

type Login struct {
	Token    string   `json:"token"`
	Identity Identity `json:"identity"`
}
