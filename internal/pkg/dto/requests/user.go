package requests

// UpdateProfile carries optional fields, nil means unchanged. Fields of the
// other role's variant are ignored.
type UpdateProfile struct {
	DisplayName *string `json:"displayName" validate:"omitempty,min=1,max=100"`
	Phone       *string `json:"phone" validate:"omitempty,max=30"`
	Address     *string `json:"address" validate:"omitempty,max=255"`

	Gender *string `json:"gender" validate:"omitempty,max=20"`
	Age    *int    `json:"age" validate:"omitempty,gte=0,lte=150"`

	Specialization  *string `json:"specialization" validate:"omitempty,max=100"`
	Qualification   *string `json:"qualification" validate:"omitempty,max=100"`
	YearsExperience *int    `json:"yearsExperience" validate:"omitempty,gte=0,lte=80"`
	Clinic          *string `json:"clinic" validate:"omitempty,max=150"`

	ProfilePicture          string `json:"profilePicture"`
	ProfilePictureData      []byte `json:"-"`
	ProfilePictureExtension string `json:"-"`
}
