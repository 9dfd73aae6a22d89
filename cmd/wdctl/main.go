/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Command wdctl queries and configures a Linux watchdog device.
//
//	wdctl --set-timeout 30 --get-timeout --get-info
//	wdctl -d /dev/watchdog1 --keepalive
package main

import (
	"os"

	"github.com/medik8s/wdctl/internal/cli"
)

func main() {
	app := &cli.App{}
	os.Exit(app.Run(os.Args[1:]))
}
