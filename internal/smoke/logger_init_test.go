package smoke

import "github.com/okian/convention/pkg/logger"

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}
