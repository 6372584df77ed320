// @title           microblog API
// @version         1.0
// @description     Users, posts, comments, favorites and ratings.
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:8000
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization

package main

import "microblog/internal/app"

func main() {
	app.Run()
}
