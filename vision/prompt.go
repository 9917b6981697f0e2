package vision

import "fmt"

// SystemPrompt frames the model as a detection backend.
const SystemPrompt = "You are a computer vision system that detects objects and their positions in images."

// DetectionPrompt builds the per-frame detection request. The prompt pins
// the response to the strict JSON schema the parser expects; the heuristic
// fallback handles models that drift into prose anyway.
func DetectionPrompt(target string) string {
	return fmt.Sprintf(`Analyze this image and find the %[1]s.
If you see the %[1]s, provide the following information in JSON format:
1. Is the %[1]s present? (true/false)
2. Position of the %[1]s in the image (left/center/right, top/middle/bottom)
3. Approximate distance (close, medium, far) if you can estimate it
4. Your confidence level (0.0-1.0)
5. A brief description of the %[1]s

Format your response as a JSON object with the following structure:
{"objects": [{"name": "%[1]s", "present": true/false, "position": "position description", "distance": "distance estimate", "confidence": confidence_value, "description": "brief description"}]}

If multiple instances are visible, include all of them in the objects array.
If no %[1]s is visible, return {"objects": []}`, target)
}
