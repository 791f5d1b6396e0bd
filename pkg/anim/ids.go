package anim

import "github.com/google/uuid"

// Built-in locomotion animations. These are the asset IDs viewers ship with;
// the integrator only ever selects from this set, scripted animations come in
// through the presence's animation set with arbitrary IDs.
var (
	Stand       = uuid.MustParse("2408fe9e-df1d-1d7d-f4ff-1384fa7b350f")
	Walk        = uuid.MustParse("6ed24bd8-91aa-4b12-ccc7-c97c857ab4e0")
	Run         = uuid.MustParse("05ddbff8-aaa9-92a1-2b74-8fe77a29b445")
	Crouch      = uuid.MustParse("201f3fdf-cb1f-dbec-201f-7333e328ae7c")
	CrouchWalk  = uuid.MustParse("47f5f6fb-22e5-ae44-f871-73aaaf4a6022")
	Fly         = uuid.MustParse("aec4610c-757f-bc4e-c092-c6e9caf18daf")
	Hover       = uuid.MustParse("4ae8016b-31b9-03bb-c401-b1ea941db41d")
	HoverUp     = uuid.MustParse("20f063ea-8306-2562-0b07-5c853b37b31e")
	HoverDown   = uuid.MustParse("62c5de58-cb33-5743-3d07-9e4cd4352864")
	FallDown    = uuid.MustParse("666307d9-a860-572d-6fd4-c3ab8865c094")
	Land        = uuid.MustParse("7a17b059-12b2-41b1-570a-186368b6aa6f")
	MediumLand  = uuid.MustParse("f4f00d6e-b9fe-9292-f4cb-0ae06ea58d57")
	StandUp     = uuid.MustParse("1a5fe8ac-a804-8a5d-7cbd-56bd83184568")
	PreJump     = uuid.MustParse("7a4e87fe-de39-6fcb-6223-024b00893244")
	Jump        = uuid.MustParse("2305bd75-1ca9-b03b-1faa-b176b8a8c49e")
	SwimForward = uuid.MustParse("6c37c2d9-dcdc-5238-cb52-b5bbd7c0a5fd")
	SwimDown    = uuid.MustParse("389dc8cb-8a08-523c-27ce-45da5286e4f6")
)
