package cullthrottle

import "github.com/boatbomber/CullThrottle/internal/handle"

// Handle identifies a registered object. The zero Handle is never issued.
type Handle = handle.Handle
