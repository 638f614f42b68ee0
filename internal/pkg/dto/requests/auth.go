package requests

type RegisterAccount struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,password"`
	DisplayName string `json:"displayName" validate:"required,max=100"`
	Role        string `json:"role" validate:"omitempty,role"`

	// patient fields
	Gender  string `json:"gender" validate:"omitempty,max=20"`
	Age     int    `json:"age" validate:"gte=0,lte=150"`
	Address string `json:"address" validate:"omitempty,max=255"`

	// doctor fields
	Specialization  string `json:"specialization" validate:"omitempty,max=100"`
	Qualification   string `json:"qualification" validate:"omitempty,max=100"`
	YearsExperience int    `json:"yearsExperience" validate:"gte=0,lte=80"`
	Clinic          string `json:"clinic" validate:"omitempty,max=150"`
	DoctorPhone     string `json:"doctorPhone" validate:"omitempty,max=30"`

	Phone string `json:"phone" validate:"omitempty,max=30"`
}

type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
