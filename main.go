package main

import (
	"context"

	"github.com/shandysiswandi/watercan/internal/app"
)

// @title           Watercan API
// @version         1.0
// @description     Phone OTP sign-in for households and distributors, profiles with avatars, household can status and the distributor directory.
// @termsOfService  https://watercan.app/terms
// @contact.name    Watercan Support
// @contact.url     https://watercan.app/contact
// @contact.email   support@watercan.app
// @license.name    MIT
// @license.url     https://mit-license.org/
// @securityDefinitions.apikey  BearerAuth
// @in header
// @name Authorization
// @description Session token from OTP verification, sent as "Bearer <token>".
func main() {
	application := app.New()
	<-application.Start()

	ctx, cancel := context.WithTimeout(context.Background(), application.ShutdownTimeout())
	defer cancel()
	application.Stop(ctx)
}
