package main

import (
	"github.com/altamart/orders/internal/app"
	"github.com/altamart/orders/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
