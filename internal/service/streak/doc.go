// Package streak turns completed reviews into daily streak tracking and
// achievement notifications. The tracker subscribes to review_completed
// events, so the review service never knows achievements exist.
package streak
