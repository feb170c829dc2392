// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-interactions.
//
// go-interactions is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package interaction

import "math/rand"

// emojis decorates the test command reply.
var emojis = []string{
	"😭", "😄", "😌", "🤓", "😎", "😤", "🤖", "😶‍🌫️", "🌏",
	"📸", "💿", "👋", "🌊", "✨",
}

// RandomEmoji returns one decorative emoji at random.
func RandomEmoji() string {
	return emojis[rand.Intn(len(emojis))]
}
