package api

import "github.com/tauraamui/prismdaemon/pkg/database/dbconn"

func OverloadConnectDB(overload func() (dbconn.GormWrapper, error)) func() {
	connectDBRef := connectDB
	connectDB = overload
	return func() { connectDB = connectDBRef }
}
